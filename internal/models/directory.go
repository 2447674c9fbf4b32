package models

// Roles known to the backend.
const (
	RoleAdmin        = "ADMIN"
	RoleDoctor       = "DOCTOR"
	RoleReceptionist = "RECEPTIONIST"
)

// Location is a clinic site.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

// CacheID implements the cache identity contract.
func (l Location) CacheID() string { return l.ID }

// Patient is a patient record. ID is the record id; PatientID is the
// clinic-facing patient number used on appointments.
type Patient struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PatientID      string `json:"patientId,omitempty"`
	Gender         string `json:"gender,omitempty"` // MALE, FEMALE, OTHER, UNDISCLOSED
	Age            *int   `json:"age,omitempty"`
	Notes          string `json:"notes,omitempty"`
	GuardianUserID string `json:"guardianUserId,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
}

// CacheID implements the cache identity contract.
func (p Patient) CacheID() string { return p.ID }

// AppointmentPatientID returns the id to put on an appointment payload.
func (p Patient) AppointmentPatientID() string {
	if p.PatientID != "" {
		return p.PatientID
	}
	return p.ID
}

// UserSummary is an entry of a users-by-role listing.
type UserSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email,omitempty"`
	LocationNames []string `json:"locationNames,omitempty"`
}

// CacheID implements the cache identity contract.
func (u UserSummary) CacheID() string { return u.ID }

// UserDetails is the full record of the logged-in user.
type UserDetails struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	LocationIDs []string `json:"locationIds,omitempty"`
	DoctorID    string   `json:"doctorId,omitempty"`
	PatientIDs  []string `json:"patientIds,omitempty"`
	Phone       string   `json:"phone,omitempty"`
}

// LoginResponse is returned by the auth endpoint.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"userId"`
}

// NewUser is the registration payload.
type NewUser struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	LocationIDs []string `json:"locationIds,omitempty"`
}

// PasswordChange is the update-password payload.
type PasswordChange struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
	IsAdmin     bool   `json:"isAdmin"`
}
