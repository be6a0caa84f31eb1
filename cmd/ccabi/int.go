package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ccabi/internal/mpa"
	"ccabi/internal/targetint"
)

var intCmd = &cobra.Command{
	Use:   "int <value>",
	Short: "Convert an integer between bases at a target precision",
	Long: `Read an integer and print it in another base after checking that it fits
the given type. Without --from the value is read as a C literal: 0x, 0b and
leading 0 select the base and u/l suffixes are ignored. Negative values need
a preceding --, as in: ccabi int -- -1 --to 16 --signed=false --wrap`,
	Args: cobra.ExactArgs(1),
	RunE: runInt,
}

func init() {
	intCmd.Flags().Int("from", 0, "input base 2..36 (0 = C literal)")
	intCmd.Flags().Int("to", 10, "output base 2..36")
	intCmd.Flags().Int("prec", 63, "number of value bits, not counting the sign bit")
	intCmd.Flags().Bool("signed", true, "the type has a sign bit")
	intCmd.Flags().Bool("wrap", false, "reduce out of range values modulo 2^width instead of failing")
	intCmd.Flags().Bool("all", false, "print decimal, hexadecimal, octal and binary forms and the required width")
}

type intRequest struct {
	text   string
	from   int
	to     int
	prec   int
	signed bool
	wrap   bool
	all    bool
}

func runInt(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	req := intRequest{text: args[0]}
	var err error
	if req.from, err = flags.GetInt("from"); err != nil {
		return err
	}
	if req.to, err = flags.GetInt("to"); err != nil {
		return err
	}
	if req.prec, err = flags.GetInt("prec"); err != nil {
		return err
	}
	if req.signed, err = flags.GetBool("signed"); err != nil {
		return err
	}
	if req.wrap, err = flags.GetBool("wrap"); err != nil {
		return err
	}
	if req.all, err = flags.GetBool("all"); err != nil {
		return err
	}
	return convertInt(cmd.OutOrStdout(), req)
}

func convertInt(w io.Writer, req intRequest) error {
	if req.prec <= 0 {
		return fmt.Errorf("invalid --prec %d", req.prec)
	}
	v, err := parseInt(req)
	if err != nil {
		return err
	}
	if !req.all {
		s, err := v.Text(req.to)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	}

	for _, base := range []struct {
		name string
		base int
	}{{"dec", 10}, {"hex", 16}, {"oct", 8}, {"bin", 2}} {
		s, err := v.Text(base.base)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-5s %s\n", base.name, s)
	}
	_, err = fmt.Fprintf(w, "%-5s %d of %d\n", "bits", v.MinRequiredWidth(), v.Width())
	return err
}

// parseInt reads req.text as a value of the requested type. With wrap the
// value is reduced to the type, otherwise it has to fit.
func parseInt(req intRequest) (targetint.TargetInt, error) {
	text := strings.TrimSpace(req.text)
	negative := false
	if text != "" && (text[0] == '-' || text[0] == '+') {
		negative = text[0] == '-'
		text = text[1:]
	}

	var mag mpa.Limbs
	if req.from == 0 {
		// read the magnitude as an unsigned literal of unbounded width
		v, err := targetint.Parse(text, 4*len(text)+64, false)
		if err != nil {
			return targetint.TargetInt{}, err
		}
		mag = v.Limbs()
	} else {
		digits := strings.ReplaceAll(text, "_", "")
		if digits == "" {
			return targetint.TargetInt{}, fmt.Errorf("%w: empty integer %q", mpa.ErrParse, req.text)
		}
		var err error
		if mag, err = mpa.FromString(digits, req.from); err != nil {
			return targetint.TargetInt{}, fmt.Errorf("integer %q: %w", req.text, err)
		}
	}

	if !req.wrap {
		return targetint.FromMagnitude(mag, negative, req.prec, req.signed)
	}
	wide, err := targetint.FromMagnitude(mag, negative, max(mag.Width(), 1), true)
	if err != nil {
		return targetint.TargetInt{}, err
	}
	return wide.Convert(req.prec, req.signed), nil
}
