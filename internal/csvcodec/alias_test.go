package csvcodec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"phone_number", "phone_number"},
		{"Phone Number", "phone_number"},
		{"  PHONE   number ", "phone_number"},
		{"E-mail", "e_mail"},
		{"__Join--Date__", "join_date"},
		{"Date (joined)", "date_joined"},
		{"Réglé", "regle"},
		{"ID#", "id"},
		{"名前", ""},
		{"---", ""},
		{"", ""},
		{"Address 2", "address_2"},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemberResolver_Resolve(t *testing.T) {
	r := MemberResolver()
	tests := []struct {
		header string
		want   string
	}{
		{"Phone", ColPhoneNumber},
		{"Full Name", ColName},
		{"Favorite Color", "favorite_color"},
		{"name", ColName},
		{"NAME", ColName},
		{"Mobile Number", ColPhoneNumber},
		{"Email Address", ColEmail},
		{"Date Joined", ColJoinDate},
		{"Next of Kin", ColEmergencyContactName},
		{"Next-of-Kin Phone", ColEmergencyContactPhone},
		{"Emergency Contact Phone", ColEmergencyContactPhone},
		{"Sub-County", ColSubCounty},
		{"Photo URL", ColAvatarURL},
		{"ID Number", ColNationalID},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.header); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestMemberResolver_Canonical(t *testing.T) {
	want := []string{
		"name", "phone_number", "email", "role", "status", "join_date", "bio",
		"gender", "occupation", "national_id", "county", "sub_county", "address",
		"emergency_contact_name", "emergency_contact_phone",
		"emergency_contact_relationship", "avatar_url",
	}
	if diff := cmp.Diff(want, MemberResolver().Canonical()); diff != "" {
		t.Errorf("Canonical mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_FirstDeclaredWins(t *testing.T) {
	r := NewResolver([]FieldAliases{
		{Canonical: "mobile", Aliases: []string{"Phone"}},
		{Canonical: "landline", Aliases: []string{"phone", "Tel"}},
	})

	if got := r.Resolve("PHONE"); got != "mobile" {
		t.Errorf("Resolve(PHONE) = %q, want mobile", got)
	}
	if got := r.Resolve("tel"); got != "landline" {
		t.Errorf("Resolve(tel) = %q, want landline", got)
	}
}

func TestResolver_CanonicalBeatsLaterAlias(t *testing.T) {
	r := NewResolver([]FieldAliases{
		{Canonical: "email"},
		{Canonical: "contact", Aliases: []string{"email"}},
	})
	if got := r.Resolve("Email"); got != "email" {
		t.Errorf("Resolve(Email) = %q, want email", got)
	}
	if !r.IsCanonical("contact") || r.IsCanonical("phone") {
		t.Error("IsCanonical reports wrong membership")
	}
}

func TestResolver_Nil(t *testing.T) {
	var r *Resolver
	if got := r.Resolve("Full Name"); got != "full_name" {
		t.Errorf("nil Resolve = %q, want full_name", got)
	}
	if r.Canonical() != nil {
		t.Error("nil Canonical should be nil")
	}
}

func TestResolver_CanonicalIsCopy(t *testing.T) {
	r := MemberResolver()
	c := r.Canonical()
	c[0] = "changed"
	if r.Canonical()[0] != ColName {
		t.Error("Canonical exposes internal slice")
	}
}
