package domain

import "strings"

type ChildID string
type ChildUserID string
type FirstName string
type InstitutionCode string

type Institution struct {
	Code InstitutionCode
	Name string
}

type Child struct {
	ID          ChildID
	UserID      ChildUserID
	Name        string
	FirstName   FirstName
	Institution Institution
}

// GuardianProfile is one entry of the login profile list as returned by the
// portal, before normalisation into a Roster.
type GuardianProfile struct {
	InstitutionCodes []InstitutionCode
	Children         []ProfileChild
}

type ProfileChild struct {
	ID              ChildID
	UserID          ChildUserID
	Name            string
	InstitutionCode InstitutionCode
	InstitutionName string
}

// Guardian identifies the account holder. UserID is what the vendor widgets
// call the session id.
type Guardian struct {
	UserID   string
	Username string
}

type Roster struct {
	Children     []Child
	Institutions []Institution
}

// FirstNameOf returns the first whitespace-delimited token of a full name.
func FirstNameOf(fullName string) FirstName {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return FirstName(strings.TrimSpace(fullName))
	}

	return FirstName(fields[0])
}

func (r Roster) ChildIDs() []ChildID {
	ids := make([]ChildID, 0, len(r.Children))
	for _, child := range r.Children {
		ids = append(ids, child.ID)
	}
	return ids
}

func (r Roster) UserIDs() []ChildUserID {
	ids := make([]ChildUserID, 0, len(r.Children))
	for _, child := range r.Children {
		ids = append(ids, child.UserID)
	}
	return ids
}

func (r Roster) InstitutionCodes() []InstitutionCode {
	codes := make([]InstitutionCode, 0, len(r.Institutions))
	for _, institution := range r.Institutions {
		codes = append(codes, institution.Code)
	}
	return codes
}

func (r Roster) FirstNames() []FirstName {
	names := make([]FirstName, 0, len(r.Children))
	for _, child := range r.Children {
		names = append(names, child.FirstName)
	}
	return names
}

func (r Roster) FirstNameByUserID(userID ChildUserID) (FirstName, bool) {
	for _, child := range r.Children {
		if child.UserID == userID {
			return child.FirstName, true
		}
	}
	return "", false
}

// FindChild matches a child by id or by case-insensitive first name.
func (r Roster) FindChild(key string) (Child, bool) {
	key = strings.TrimSpace(key)
	for _, child := range r.Children {
		if string(child.ID) == key || strings.EqualFold(string(child.FirstName), key) {
			return child, true
		}
	}
	return Child{}, false
}

// DuplicateFirstNames reports first names shared by more than one child.
// Week plans are keyed by first name, so these children overwrite each other.
func (r Roster) DuplicateFirstNames() []FirstName {
	counts := make(map[FirstName]int, len(r.Children))
	var duplicates []FirstName
	for _, child := range r.Children {
		counts[child.FirstName]++
		if counts[child.FirstName] == 2 {
			duplicates = append(duplicates, child.FirstName)
		}
	}
	return duplicates
}

func (r Roster) Clone() Roster {
	return Roster{
		Children:     append([]Child(nil), r.Children...),
		Institutions: append([]Institution(nil), r.Institutions...),
	}
}
