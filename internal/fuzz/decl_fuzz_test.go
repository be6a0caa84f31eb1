package fuzztests

import (
	"context"
	"testing"
	"time"

	"ccabi/internal/arch"
	"ccabi/internal/decl"
	"ccabi/internal/diag"
	"ccabi/internal/source"
)

// loadTimeout bounds loading of a single input. Longer runs point to a
// loop in tag resolution.
const loadTimeout = 5 * time.Second

func loadDecls(input []byte, a arch.Architecture) (*decl.File, *diag.Bag, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("fuzz.abi.toml", input)
	bag := diag.NewBag(128)
	f, err := decl.Load(context.Background(), fs, id, a, diag.NewBagReporter(bag))
	return f, bag, err
}

func FuzzDeclLoad(f *testing.F) {
	addDeclSeeds(f)
	x86 := arch.NewX86_64GCC48(arch.Config{})
	f.Fuzz(func(t *testing.T, input []byte) {
		file, bag, err := loadDecls(clampInput(input), x86)
		if err == nil && file == nil {
			t.Fatalf("Load returned neither a file nor an error")
		}
		if err != nil {
			return
		}
		// a declaration is either marked failed or was reported clean
		for _, d := range file.Decls {
			if d.Failed && !bag.HasErrors() {
				t.Fatalf("%s failed without an error diagnostic", d.Name)
			}
		}
	})
}

func FuzzDeclLoadNoHang(f *testing.F) {
	addDeclSeeds(f)
	packed := arch.NewX86_64GCC48(arch.Config{PackStruct: arch.MaxPackStruct})
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _, _ = loadDecls(input, packed)
		}()
		select {
		case <-done:
		case <-time.After(loadTimeout):
			t.Fatalf("Load did not finish within %v on %d bytes", loadTimeout, len(input))
		}
	})
}

func TestSeedFilesLoadCleanly(t *testing.T) {
	x86 := arch.NewX86_64GCC48(arch.Config{})
	files := seedFiles()
	if len(files) == 0 {
		t.Skip("no seed files")
	}
	for _, path := range files {
		t.Run(path, func(t *testing.T) {
			fs := source.NewFileSet()
			id, err := fs.Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			bag := diag.NewBag(100)
			file, err := decl.Load(context.Background(), fs, id, x86, diag.NewBagReporter(bag))
			if err != nil {
				t.Fatalf("decl.Load: %v", err)
			}
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %s", diag.FormatShort(bag.Items(), fs, true))
			}
			for _, d := range file.Decls {
				if d.Failed {
					t.Fatalf("%s failed", d.Name)
				}
			}
		})
	}
}
