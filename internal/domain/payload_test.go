package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

const samplePayload = `{
	"name": "Jane Doe",
	"email": "jane@example.com",
	"phone": "+1 555 0100",
	"birth_date": "1995-04",
	"summary": "Backend engineer.",
	"experiences": [
		{"job_title": "Engineer", "company": "Acme", "start_date": "2020-01", "end_date": "2022-01"},
		{"job_title": "Senior Engineer", "company": "Globex", "start_date": "2022-02", "is_current": true}
	],
	"education": [
		{"degree": "BSc", "field": "Computer Science", "institution": "State University"}
	],
	"skills": [
		{"name": "Go", "category": "language"},
		{"name": "PostgreSQL", "category": "database"}
	],
	"certifications": [
		{"name": "CKA", "issuer": "CNCF"}
	],
	"languages": [
		{"name": "English", "proficiency": "fluent"}
	]
}`

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	if p.Name != "Jane Doe" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(p.Experiences) != 2 || len(p.Skills) != 2 || len(p.Education) != 1 {
		t.Errorf("unexpected collection sizes: exp=%d skills=%d edu=%d",
			len(p.Experiences), len(p.Skills), len(p.Education))
	}
}

func TestDecodePayloadToleratesMissingBlocks(t *testing.T) {
	p, err := DecodePayload(json.RawMessage(`{"name": "Jane"}`))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	subs := p.SubCollections("pr-1")
	if len(subs.Experiences) != 0 || len(subs.Skills) != 0 {
		t.Error("expected empty sub-collections for missing blocks")
	}
}

func TestDecodePayloadInvalid(t *testing.T) {
	if _, err := DecodePayload(json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestSubCollectionsOrder(t *testing.T) {
	p, err := DecodePayload(json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	subs := p.SubCollections("pr-1")

	for i, exp := range subs.Experiences {
		if exp.Order != i {
			t.Errorf("experience %d Order = %d", i, exp.Order)
		}
		if exp.ParsedResumeID != "pr-1" {
			t.Errorf("experience %d ParsedResumeID = %q", i, exp.ParsedResumeID)
		}
	}
	if subs.Experiences[0].Company != "Acme" || subs.Experiences[1].Company != "Globex" {
		t.Error("payload order not preserved")
	}
	if !subs.Experiences[1].IsCurrent {
		t.Error("IsCurrent not carried over")
	}
}

func TestSubCollectionsIdempotent(t *testing.T) {
	// Decomposing the same payload twice yields identical rows; re-parses
	// with identical model output must not differ.
	p, err := DecodePayload(json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	first := p.SubCollections("pr-1")
	second := p.SubCollections("pr-1")

	if !reflect.DeepEqual(first, second) {
		t.Error("sub-collection decomposition is not deterministic")
	}
}

func TestPersonalInfo(t *testing.T) {
	p, err := DecodePayload(json.RawMessage(samplePayload))
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	info := p.PersonalInfo()
	if info.Name != "Jane Doe" || info.Email != "jane@example.com" {
		t.Errorf("unexpected personal info: %+v", info)
	}
	if info.BirthDate != "1995-04" {
		t.Errorf("BirthDate = %q", info.BirthDate)
	}
}
