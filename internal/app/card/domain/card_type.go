package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CardType tags which kind of card an entity is.
type CardType string

const (
	CardWorkExperience   CardType = "work_experience"
	CardEducation        CardType = "education"
	CardPortfolioProject CardType = "portfolio_project"
	CardAboutMe          CardType = "about_me"
)

// Field names for change tracking. Shared names (description, year, ...) are
// valid on more than one card type.
const (
	FieldCompanyName   = "company_name"
	FieldPosition      = "position"
	FieldYear          = "year"
	FieldLocation      = "location"
	FieldDescription   = "description"
	FieldTechnologies  = "technologies"
	FieldSortOrder     = "sort_order"
	FieldInstitution   = "institution"
	FieldDegree        = "degree"
	FieldFieldOfStudy  = "field_of_study"
	FieldTitle         = "title"
	FieldURL           = "url"
	FieldRepositoryURL = "repository_url"
	FieldImageURL      = "image_url"
	FieldFullName      = "full_name"
	FieldHeadline      = "headline"
	FieldBio           = "bio"
	FieldEmail         = "email"
	FieldAvatarURL     = "avatar_url"
)

// FieldKind describes how a string value from the editor maps to storage.
type FieldKind int

const (
	KindText FieldKind = iota
	KindInt
)

// cardSchema is the closed set of editable fields for one card type, plus the
// field used to derive a display label and the entity key prefix.
type cardSchema struct {
	keyPrefix  string
	display    string
	labelField string
	fields     map[string]FieldKind
}

var schemas = map[CardType]cardSchema{
	CardWorkExperience: {
		keyPrefix:  "work",
		display:    "Work experience",
		labelField: FieldCompanyName,
		fields: map[string]FieldKind{
			FieldCompanyName:  KindText,
			FieldPosition:     KindText,
			FieldYear:         KindText,
			FieldLocation:     KindText,
			FieldDescription:  KindText,
			FieldTechnologies: KindText,
			FieldSortOrder:    KindInt,
		},
	},
	CardEducation: {
		keyPrefix:  "education",
		display:    "Education",
		labelField: FieldInstitution,
		fields: map[string]FieldKind{
			FieldInstitution:  KindText,
			FieldDegree:       KindText,
			FieldFieldOfStudy: KindText,
			FieldYear:         KindText,
			FieldDescription:  KindText,
			FieldSortOrder:    KindInt,
		},
	},
	CardPortfolioProject: {
		keyPrefix:  "project",
		display:    "Project",
		labelField: FieldTitle,
		fields: map[string]FieldKind{
			FieldTitle:         KindText,
			FieldDescription:   KindText,
			FieldURL:           KindText,
			FieldRepositoryURL: KindText,
			FieldImageURL:      KindText,
			FieldTechnologies:  KindText,
			FieldSortOrder:     KindInt,
		},
	},
	CardAboutMe: {
		keyPrefix:  "about",
		display:    "About me",
		labelField: FieldFullName,
		fields: map[string]FieldKind{
			FieldFullName:  KindText,
			FieldHeadline:  KindText,
			FieldBio:       KindText,
			FieldEmail:     KindText,
			FieldLocation:  KindText,
			FieldAvatarURL: KindText,
		},
	},
}

// ParseCardType validates a raw card type tag.
func ParseCardType(raw string) (CardType, error) {
	ct := CardType(strings.TrimSpace(raw))
	if _, ok := schemas[ct]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCardType, raw)
	}
	return ct, nil
}

// Valid reports whether the card type is one of the known tags.
func (ct CardType) Valid() bool {
	_, ok := schemas[ct]
	return ok
}

// FieldKind returns the storage kind of a field, or false if the field is not
// permitted on this card type.
func (ct CardType) FieldKind(field string) (FieldKind, bool) {
	s, ok := schemas[ct]
	if !ok {
		return 0, false
	}
	kind, ok := s.fields[field]
	return kind, ok
}

// ValidateField checks that field is permitted on ct and that value can be
// stored with the field's kind.
func (ct CardType) ValidateField(field, value string) error {
	if !ct.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCardType, string(ct))
	}
	kind, ok := ct.FieldKind(field)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, ct, field)
	}
	if kind == KindInt && strings.TrimSpace(value) != "" {
		if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidFieldValue, field, value)
		}
	}
	return nil
}

// ValidateFields validates every entry of fields against the card schema, in
// field-name order, and returns the first failure.
func (ct CardType) ValidateFields(fields map[string]string) error {
	for _, f := range FieldsFromMap(fields) {
		if err := ct.ValidateField(f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// EntityKey builds the registry key for a card, e.g. "work_42".
func EntityKey(ct CardType, id int64) string {
	prefix := string(ct)
	if s, ok := schemas[ct]; ok {
		prefix = s.keyPrefix
	}
	return fmt.Sprintf("%s_%d", prefix, id)
}

// DeriveLabel picks a display label for a card: the explicit label when
// given, else the type's naming field, else "<Type> #<id>".
func DeriveLabel(ct CardType, id int64, explicit string, fields map[string]string) string {
	if l := NamingLabel(ct, explicit, fields); l != "" {
		return l
	}
	if s, ok := schemas[ct]; ok {
		return fmt.Sprintf("%s #%d", s.display, id)
	}
	return fmt.Sprintf("%s #%d", ct, id)
}

// NamingLabel is DeriveLabel without the fallback: it returns "" when
// neither an explicit label nor the naming field is present.
func NamingLabel(ct CardType, explicit string, fields map[string]string) string {
	if l := strings.TrimSpace(explicit); l != "" {
		return l
	}
	if s, ok := schemas[ct]; ok {
		return strings.TrimSpace(fields[s.labelField])
	}
	return ""
}
