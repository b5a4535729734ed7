package main

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// CatalogValidator collects problems across a catalog and the workflows that read it.
type CatalogValidator struct {
	Strict   bool
	errors   []string
	warnings []string
}

// Run validates the catalog at path, or the embedded one when path is empty.
func (v *CatalogValidator) Run(out io.Writer, path string) error {
	v.errors, v.warnings = nil, nil

	var (
		cat *catalog.Catalog
		err error
	)
	if path == "" {
		fmt.Fprintln(out, "Validating embedded catalog...")
		cat = catalog.Default()
	} else {
		fmt.Fprintf(out, "Validating %s...\n", path)
		if err := checkFilename(path); err != nil {
			return err
		}
		cat, err = catalog.Load(path)
		if err != nil {
			return err
		}
	}

	v.validateWorkflows(cat)

	if len(v.warnings) > 0 {
		fmt.Fprintf(out, "warnings:\n%s\n", strings.Join(v.warnings, "\n"))
	}
	if v.Strict {
		v.errors = append(v.errors, v.warnings...)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func checkFilename(path string) error {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("catalog file must have .yaml or .yml extension: %s", base)
	}
	if !validFilenameRegex.MatchString(strings.TrimSuffix(base, ext)) {
		return fmt.Errorf("catalog filename '%s' must be lowercase snake_case", base)
	}
	return nil
}

func (v *CatalogValidator) validateWorkflows(cat *catalog.Catalog) {
	for _, w := range workflow.All() {
		for i, step := range w.Steps {
			where := fmt.Sprintf("workflow %s step %d (%s)", w.ID, i+1, step.Title)
			switch step.Kind {
			case workflow.StepChoice, workflow.StepTags:
				v.validatePool(cat, where, step)
			case workflow.StepSeeds:
				if len(cat.SeedSlots) == 0 {
					v.addWarning(fmt.Sprintf("%s collects seeds but the catalog has no seed_slots", where))
				}
			}
		}
		if w.Seeds == workflow.SeedsConcept && len(cat.ConceptHints.Professions) == 0 {
			v.addWarning(fmt.Sprintf("workflow %s reads concepts but concept_hints.professions is empty", w.ID))
		}
		if w.Output == workflow.OutputPlay {
			if cat.Play.MinPlayers < 1 {
				v.addError(fmt.Sprintf("workflow %s needs play.min_players of at least 1", w.ID))
			}
			if len(cat.Play.Nouns) == 0 || len(cat.Play.Adjectives) == 0 {
				v.addError(fmt.Sprintf("workflow %s needs play.nouns and play.adjectives", w.ID))
			}
		}
		if (w.Output == workflow.OutputVisual || w.Output == workflow.OutputStoryVisual) && len(cat.VisualBlurbs) == 0 {
			v.addWarning(fmt.Sprintf("workflow %s renders visuals but visual_blurbs is empty", w.ID))
		}
	}
}

func (v *CatalogValidator) validatePool(cat *catalog.Catalog, where string, step workflow.Step) {
	pool, ok := cat.Pool(step.Pool)
	if !ok {
		v.addError(fmt.Sprintf("%s references unknown pool %q", where, step.Pool))
		return
	}
	if pool.Size() == 0 {
		v.addError(fmt.Sprintf("%s draws from empty pool %q", where, step.Pool))
		return
	}
	if step.Fixed {
		return
	}
	c := step.Counts
	if c.Core > len(pool.Core) || c.Flex > len(pool.Flex) || c.Bonus > len(pool.Bonus) {
		v.addWarning(fmt.Sprintf("%s samples %d/%d/%d from pool %q holding %d/%d/%d, menus will be short",
			where, c.Core, c.Flex, c.Bonus, step.Pool, len(pool.Core), len(pool.Flex), len(pool.Bonus)))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *CatalogValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}
