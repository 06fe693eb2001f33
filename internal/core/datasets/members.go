package datasets

import (
	"github.com/google/uuid"

	"github.com/JonMunkholm/memberdesk/internal/core"
	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

// MembersKey is the registry key of the member dataset.
const MembersKey = "members"

// Member enum values.
var (
	MemberRoles    = []string{"chairperson", "secretary", "treasurer", "official", "member"}
	MemberStatuses = []string{"active", "inactive", "suspended", "pending"}
	MemberGenders  = []string{"male", "female", "other"}
)

// memberNamespace seeds the name-based UUIDs of members, so re-importing the
// same person updates the stored row.
var memberNamespace = uuid.MustParse("5b4c3a5e-6d0f-4b8e-9a51-2f7c1d8e0b64")

func init() {
	registerMembers()
}

func registerMembers() {
	core.Register(core.Dataset{
		Info: core.DatasetInfo{
			Key:         MembersKey,
			Label:       "Members",
			Description: "Group members with contact, role and emergency contact details",
		},
		Fields: []core.FieldSpec{
			{Name: csvcodec.ColName, Type: core.FieldText, Required: true},
			{Name: csvcodec.ColPhoneNumber, Type: core.FieldPhone, Normalizer: NormalizePhone},
			{Name: csvcodec.ColEmail, Type: core.FieldEmail, Normalizer: NormalizeEmail},
			{Name: csvcodec.ColRole, Type: core.FieldEnum, EnumValues: MemberRoles, Normalizer: NormalizeLower},
			{Name: csvcodec.ColStatus, Type: core.FieldEnum, EnumValues: MemberStatuses, Normalizer: NormalizeLower},
			{Name: csvcodec.ColJoinDate, Type: core.FieldDate, Normalizer: NormalizeDate},
			{Name: csvcodec.ColBio, Type: core.FieldText},
			{Name: csvcodec.ColGender, Type: core.FieldEnum, EnumValues: MemberGenders, Normalizer: NormalizeGender},
			{Name: csvcodec.ColOccupation, Type: core.FieldText},
			{Name: csvcodec.ColNationalID, Type: core.FieldText},
			{Name: csvcodec.ColCounty, Type: core.FieldText, Normalizer: NormalizePlace},
			{Name: csvcodec.ColSubCounty, Type: core.FieldText, Normalizer: NormalizePlace},
			{Name: csvcodec.ColAddress, Type: core.FieldText},
			{Name: csvcodec.ColEmergencyContactName, Type: core.FieldText},
			{Name: csvcodec.ColEmergencyContactPhone, Type: core.FieldPhone, Normalizer: NormalizePhone},
			{Name: csvcodec.ColEmergencyContactRelationship, Type: core.FieldText, Normalizer: NormalizeLower},
			{Name: csvcodec.ColAvatarURL, Type: core.FieldURL},
		},
		Resolver:       csvcodec.MemberResolver(),
		RowKey:         MemberID,
		SummaryColumns: []string{csvcodec.ColStatus, csvcodec.ColRole, csvcodec.ColGender, csvcodec.ColCounty},
	})
}

// MemberID derives a member's id from the national ID, else the email. A
// member with neither gets a random id and is always inserted as new.
func MemberID(rec csvcodec.Record) uuid.UUID {
	if v := rec[csvcodec.ColNationalID]; v != "" {
		return uuid.NewSHA1(memberNamespace, []byte("national_id:"+v))
	}
	if v := rec[csvcodec.ColEmail]; v != "" {
		return uuid.NewSHA1(memberNamespace, []byte("email:"+NormalizeEmail(v)))
	}
	return uuid.New()
}
