package ingest

import (
	"errors"
	"strings"

	"github.com/camden-git/personagen/models"
)

// ErrMissingAdminID marks an entry that cannot be identified and therefore
// cannot be stored.
var ErrMissingAdminID = errors.New("entry has no administrator id")

// Flatten maps one raw JSON entry onto an AdminProfile row. The source shape is
// prv.org.admin for the administrator block, org.contacts.address for the
// organization address and org.langs for spoken languages. Any missing or
// mistyped level yields empty fields for that branch instead of failing the
// entry; only a missing admin id makes the entry unusable.
func Flatten(raw map[string]interface{}, sourceFile, category, subcategory string) (*models.AdminProfile, error) {
	prv := subObject(raw, "prv")
	org := subObject(prv, "org")
	admin := subObject(org, "admin")
	adminContacts := subObject(admin, "contacts")
	orgContacts := subObject(org, "contacts")
	address := subObject(orgContacts, "address")

	adminID := intField(admin, "id")
	if adminID <= 0 {
		return nil, ErrMissingAdminID
	}

	return &models.AdminProfile{
		SourceFile:       sourceFile,
		Category:         category,
		Subcategory:      subcategory,
		AdminID:          adminID,
		FirstName:        stringField(admin, "fname"),
		LastName:         stringField(admin, "sname"),
		Email:            stringField(adminContacts, "email"),
		PhoneNumber:      stringField(adminContacts, "phoneNumber"),
		OrganizationName: stringField(org, "name"),
		OrganizationTown: stringField(address, "town"),
		Languages:        joinLanguages(org["langs"]),
	}, nil
}

// subObject descends one level into a nested object, returning nil on any
// missing or non-object value so lookups below it read as empty
func subObject(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]interface{})
	return sub
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// intField reads a numeric field; JSON numbers decode as float64
func intField(m map[string]interface{}, key string) int64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// joinLanguages flattens the langs list into a comma-separated string,
// preserving source order and skipping non-string members
func joinLanguages(v interface{}) string {
	list, ok := v.([]interface{})
	if !ok {
		return ""
	}
	langs := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			langs = append(langs, s)
		}
	}
	return strings.Join(langs, ", ")
}
