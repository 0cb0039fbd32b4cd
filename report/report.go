// Package report defines the read-only input entities consumed by the
// rendering engine. The engine never mutates or persists any of them;
// they arrive fully materialized from the surrounding service layer.
package report

import "time"

// Snapshot describes one inspection report at render time. The embedded
// TemplateSnapshot is frozen at report-creation time so historical documents
// remain stable even if the live template changes later.
type Snapshot struct {
	Title       string              `json:"title"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
	Location    string              `json:"location,omitempty"`
	Template    TemplateSnapshot    `json:"template"`
	InfoValues  []InfoValue         `json:"infoValues"`
	Responses   []ChecklistResponse `json:"responses"`
	Signatures  []SignatureRecord   `json:"signatures,omitempty"`
}

// TemplateSnapshot is the frozen structure of a checklist template.
// It drives WHAT is rendered; responses only fill values into that shape.
type TemplateSnapshot struct {
	Name           string             `json:"name"`
	Code           string             `json:"code"`
	Version        int                `json:"version"`
	InfoFields     []InfoFieldDef     `json:"infoFields"`
	Sections       []SectionDef       `json:"sections"`
	SignatureRoles []SignatureRoleDef `json:"signatureRoles,omitempty"`
}

type InfoFieldDef struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	Order int    `json:"order"`
}

type SectionDef struct {
	Name   string     `json:"name"`
	Order  int        `json:"order"`
	Fields []FieldDef `json:"fields"`
}

type FieldDef struct {
	Label        string `json:"label"`
	Type         string `json:"type"`
	Order        int    `json:"order"`
	AllowPhotos  bool   `json:"allowPhotos,omitempty"`
	AllowComment bool   `json:"allowComment,omitempty"`
}

type SignatureRoleDef struct {
	Role  string `json:"role"`
	Order int    `json:"order"`
}

// InfoValue is one answered info field of the report header area.
type InfoValue struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ChecklistResponse is one answered checklist field. Responses are matched
// to template fields by (section name, field label); a response with no
// matching template field is omitted from the output.
type ChecklistResponse struct {
	SectionName  string           `json:"sectionName"`
	SectionOrder int              `json:"sectionOrder"`
	FieldLabel   string           `json:"fieldLabel"`
	FieldOrder   int              `json:"fieldOrder"`
	FieldType    string           `json:"fieldType"`
	Value        string           `json:"value"`
	Comment      string           `json:"comment,omitempty"`
	Photos       []PhotoReference `json:"photos,omitempty"`
}

// PhotoReference points at a captured photo. Source is either a fetchable
// URL or a storage key resolved by the image source collaborator.
type PhotoReference struct {
	Source     string     `json:"source"`
	Filename   string     `json:"filename,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Address    string     `json:"address,omitempty"`
	FieldLabel string     `json:"fieldLabel,omitempty"`
}

// SignatureRecord is one collected signature.
type SignatureRecord struct {
	RoleName    string     `json:"roleName"`
	SignerName  string     `json:"signerName"`
	ImageSource string     `json:"imageSource,omitempty"`
	SignedAt    *time.Time `json:"signedAt,omitempty"`
}

// CertificateStatus classifies a calibration certificate.
type CertificateStatus string

const (
	CertificateValid    CertificateStatus = "valid"
	CertificateExpiring CertificateStatus = "expiring"
	CertificateExpired  CertificateStatus = "expired"
)

// CertificateRecord is one calibration certificate row.
type CertificateRecord struct {
	Equipment    string            `json:"equipment"`
	Number       string            `json:"number"`
	Laboratory   string            `json:"laboratory"`
	CalibratedAt *time.Time        `json:"calibratedAt,omitempty"`
	ExpiresAt    *time.Time        `json:"expiresAt,omitempty"`
	Status       CertificateStatus `json:"status"`
}

// TenantBranding carries the tenant identity drawn on every document.
// All fields are optional; absent logos and colors fall back to defaults.
type TenantBranding struct {
	Name                string `json:"name"`
	LogoSource          string `json:"logoSource,omitempty"`
	SecondaryLogoSource string `json:"secondaryLogoSource,omitempty"`
	PrimaryColor        string `json:"primaryColor,omitempty"`
	SecondaryColor      string `json:"secondaryColor,omitempty"`
	AccentColor         string `json:"accentColor,omitempty"`
	Address             string `json:"address,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Email               string `json:"email,omitempty"`
	Website             string `json:"website,omitempty"`
}
