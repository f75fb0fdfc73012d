package calculation

import (
	"github.com/patrimoine/wealth-audit/internal/domain"
)

// parentStageForYear returns a parent's life stage for a calendar year.
// Retirement applies starting the year the configured age is reached;
// employment income applies only through the prior year.
func parentStageForYear(parent domain.Person, retirementAge, year int) domain.LifeStage {
	if year >= parent.BirthDate.Year()+retirementAge {
		return domain.StageRetired
	}
	return domain.StageEmployed
}

// childStageForYear walks the linear Schooled → InEducation → Employed →
// Retired progression. The retirement age of a child defaults to the first
// parent's configured age unless overridden per child (see
// ProjectionSettings.RetirementAgeByChild).
func childStageForYear(child domain.Person, settings domain.ProjectionSettings, firstParentRetirementAge, year int) domain.LifeStage {
	birthYear := child.BirthDate.Year()
	educationStart := birthYear + settings.EducationStartAge
	employmentStart := educationStart + settings.EducationDurationYears
	retirementStart := birthYear + settings.ChildRetirementAgeFor(child.Name, firstParentRetirementAge)

	switch {
	case year >= retirementStart && retirementStart > employmentStart:
		return domain.StageRetired
	case year >= employmentStart:
		return domain.StageEmployed
	case year >= educationStart:
		return domain.StageInEducation
	default:
		return domain.StageSchooled
	}
}

// isDependent reports whether a child still counts as a fiscal dependent:
// anyone not yet employed
func isDependent(stage domain.LifeStage) bool {
	return stage == domain.StageSchooled || stage == domain.StageInEducation
}
