package csvcodec

// Canonical member columns.
const (
	ColName                         = "name"
	ColPhoneNumber                  = "phone_number"
	ColEmail                        = "email"
	ColRole                         = "role"
	ColStatus                       = "status"
	ColJoinDate                     = "join_date"
	ColBio                          = "bio"
	ColGender                       = "gender"
	ColOccupation                   = "occupation"
	ColNationalID                   = "national_id"
	ColCounty                       = "county"
	ColSubCounty                    = "sub_county"
	ColAddress                      = "address"
	ColEmergencyContactName         = "emergency_contact_name"
	ColEmergencyContactPhone        = "emergency_contact_phone"
	ColEmergencyContactRelationship = "emergency_contact_relationship"
	ColAvatarURL                    = "avatar_url"
)

// MemberAliases is the member interchange column set, in export order,
// with the header spellings accepted on import.
var MemberAliases = []FieldAliases{
	{ColName, []string{"Full Name", "Fullname", "Member Name", "Member", "Names"}},
	{ColPhoneNumber, []string{"Phone", "Phone No", "Telephone", "Tel", "Mobile", "Mobile Number", "Cell", "Cellphone", "Contact Number"}},
	{ColEmail, []string{"E-mail", "Email Address", "Mail"}},
	{ColRole, []string{"Position", "Member Role"}},
	{ColStatus, []string{"Member Status", "Membership Status"}},
	{ColJoinDate, []string{"Joined", "Date Joined", "Joined On", "Joining Date", "Member Since", "Start Date"}},
	{ColBio, []string{"Biography", "About", "Description"}},
	{ColGender, []string{"Sex"}},
	{ColOccupation, []string{"Job", "Profession", "Job Title"}},
	{ColNationalID, []string{"ID Number", "National ID Number", "ID No", "NID"}},
	{ColCounty, []string{"Region"}},
	{ColSubCounty, []string{"Subcounty", "Sub Region", "District"}},
	{ColAddress, []string{"Physical Address", "Location", "Residence", "Street Address"}},
	{ColEmergencyContactName, []string{"Emergency Contact", "Emergency Name", "Next of Kin", "Next of Kin Name"}},
	{ColEmergencyContactPhone, []string{"Emergency Phone", "Emergency Contact Number", "Next of Kin Phone"}},
	{ColEmergencyContactRelationship, []string{"Emergency Relationship", "Relationship", "Next of Kin Relationship"}},
	{ColAvatarURL, []string{"Avatar", "Photo", "Photo URL", "Picture", "Image URL", "Profile Picture"}},
}

var memberResolver = NewResolver(MemberAliases)

// MemberResolver returns the shared resolver for MemberAliases.
func MemberResolver() *Resolver {
	return memberResolver
}
