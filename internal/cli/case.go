package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"ahliwaris/internal/declaration/models"
	"ahliwaris/internal/declaration/scenario"
)

// readCase decodes a YAML (or JSON) case file; "-" reads stdin.
// Unknown keys are rejected so a misspelt field does not silently vanish.
func readCase(path string, stdin io.Reader) (models.Case, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Case{}, fmt.Errorf("read case: %w", err)
	}

	var c models.Case
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return models.Case{}, fmt.Errorf("decode case %s: %w", path, err)
	}
	return c, nil
}

func validateCase(c models.Case) (*scenario.ValidatedCase, error) {
	sc, deceased, heirs := c.ToDomain()
	return scenario.Validate(sc, deceased, heirs)
}

// printViolations lists every violation and returns an error summarizing them.
func printViolations(w io.Writer, err error) error {
	violations, ok := scenario.AsValidationErrors(err)
	if !ok {
		return err
	}
	fmt.Fprintf(w, "rejected: %d violation(s)\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(w, "  - %s\n", v.Error())
	}
	return fmt.Errorf("case rejected with %d violation(s)", len(violations))
}
