package strategy

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/models"
)

var errNoRequiredSkills = errors.New("no goal lists any required_skills entries")

// Validate checks that a document is usable as the primary strategy: it must
// contain at least one goal, and at least one goal must require a skill.
// Individual goals without requirements are still allowed.
func (d *Document) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Goals,
			validation.Required.Error("no goals found"),
			validation.By(anyRequiredSkills),
		),
	)
}

func anyRequiredSkills(value any) error {
	goals, _ := value.([]models.Goal)
	for _, g := range goals {
		if len(g.RequiredSkills) > 0 {
			return nil
		}
	}
	return errNoRequiredSkills
}
