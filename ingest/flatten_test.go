package ingest

import (
	"encoding/json"
	"errors"
	"testing"
)

func decodeEntry(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("failed to decode test entry: %v", err)
	}
	return entry
}

func TestFlattenFullEntry(t *testing.T) {
	entry := decodeEntry(t, `{
		"prv": {
			"org": {
				"name": "Central Medical University",
				"langs": ["en", "de"],
				"contacts": {"address": {"town": "Heidelberg"}},
				"admin": {
					"id": 123,
					"fname": "Anna",
					"sname": "Keller",
					"contacts": {"email": "anna@example.org", "phoneNumber": "+49 123 456"}
				}
			}
		}
	}`)

	profile, err := Flatten(entry, "data/universities/medical_schools.json", "universities", "medical_schools")
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}

	if profile.AdminID != 123 {
		t.Errorf("AdminID = %d, want 123", profile.AdminID)
	}
	if profile.Category != "universities" || profile.Subcategory != "medical_schools" {
		t.Errorf("category/subcategory = %s/%s, want universities/medical_schools", profile.Category, profile.Subcategory)
	}
	if profile.FirstName != "Anna" || profile.LastName != "Keller" {
		t.Errorf("name = %s %s, want Anna Keller", profile.FirstName, profile.LastName)
	}
	if profile.Email != "anna@example.org" {
		t.Errorf("Email = %q", profile.Email)
	}
	if profile.PhoneNumber != "+49 123 456" {
		t.Errorf("PhoneNumber = %q", profile.PhoneNumber)
	}
	if profile.OrganizationName != "Central Medical University" {
		t.Errorf("OrganizationName = %q", profile.OrganizationName)
	}
	if profile.OrganizationTown != "Heidelberg" {
		t.Errorf("OrganizationTown = %q", profile.OrganizationTown)
	}
	if profile.Languages != "en, de" {
		t.Errorf("Languages = %q, want \"en, de\"", profile.Languages)
	}
	if profile.Status != "" {
		t.Errorf("Status should be unset before upsert, got %q", profile.Status)
	}
}

func TestFlattenPartialEntry(t *testing.T) {
	// no contacts blocks, no langs, no town
	entry := decodeEntry(t, `{
		"prv": {
			"org": {
				"name": "Orphan Org",
				"admin": {"id": 7, "fname": "Ben"}
			}
		}
	}`)

	profile, err := Flatten(entry, "f.json", "cat", "sub")
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}
	if profile.AdminID != 7 || profile.FirstName != "Ben" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.LastName != "" || profile.Email != "" || profile.OrganizationTown != "" || profile.Languages != "" {
		t.Errorf("missing branches should flatten to empty fields: %+v", profile)
	}
}

func TestFlattenMissingAdminID(t *testing.T) {
	cases := map[string]string{
		"no admin block":  `{"prv": {"org": {"name": "X"}}}`,
		"zero id":         `{"prv": {"org": {"admin": {"id": 0}}}}`,
		"string id":       `{"prv": {"org": {"admin": {"id": "abc"}}}}`,
		"empty object":    `{}`,
		"wrong top level": `{"prv": "not an object"}`,
	}

	for name, raw := range cases {
		entry := decodeEntry(t, raw)
		_, err := Flatten(entry, "f.json", "cat", "sub")
		if !errors.Is(err, ErrMissingAdminID) {
			t.Errorf("%s: err = %v, want ErrMissingAdminID", name, err)
		}
	}
}

func TestFlattenSkipsNonStringLanguages(t *testing.T) {
	entry := decodeEntry(t, `{
		"prv": {"org": {
			"langs": ["en", 42, "", "fr"],
			"admin": {"id": 9}
		}}
	}`)

	profile, err := Flatten(entry, "f.json", "cat", "sub")
	if err != nil {
		t.Fatalf("Flatten returned error: %v", err)
	}
	if profile.Languages != "en, fr" {
		t.Errorf("Languages = %q, want \"en, fr\"", profile.Languages)
	}
}
