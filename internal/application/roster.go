package application

import (
	"fmt"

	"github.com/bnema/aula-cli/internal/domain"
)

// BuildRoster normalises guardian profiles into a roster. Any malformed
// child fails the whole build so a partial roster is never published.
func BuildRoster(profiles []domain.GuardianProfile) (domain.Roster, error) {
	var roster domain.Roster
	institutionIndex := map[domain.InstitutionCode]int{}

	addInstitution := func(code domain.InstitutionCode, name string) {
		if code == "" {
			return
		}
		if idx, ok := institutionIndex[code]; ok {
			if roster.Institutions[idx].Name == "" {
				roster.Institutions[idx].Name = name
			}
			return
		}
		institutionIndex[code] = len(roster.Institutions)
		roster.Institutions = append(roster.Institutions, domain.Institution{Code: code, Name: name})
	}

	for _, profile := range profiles {
		for _, code := range profile.InstitutionCodes {
			addInstitution(code, "")
		}

		for _, child := range profile.Children {
			if child.ID == "" || child.UserID == "" {
				return domain.Roster{}, fmt.Errorf("%w: child %q is missing its id", domain.ErrMalformedResponse, child.Name)
			}
			firstName := domain.FirstNameOf(child.Name)
			if firstName == "" {
				return domain.Roster{}, fmt.Errorf("%w: child %s has no name", domain.ErrMalformedResponse, child.ID)
			}

			addInstitution(child.InstitutionCode, child.InstitutionName)
			roster.Children = append(roster.Children, domain.Child{
				ID:        child.ID,
				UserID:    child.UserID,
				Name:      child.Name,
				FirstName: firstName,
				Institution: domain.Institution{
					Code: child.InstitutionCode,
					Name: child.InstitutionName,
				},
			})
		}
	}

	return roster, nil
}
