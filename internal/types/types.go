package types

import (
	"errors"
	"fmt"
	"strings"
)

// ProjectType is one of the fixed consultation categories offered on the form.
type ProjectType string

const (
	ProjectOldHouseRenovation ProjectType = "老屋/中古屋翻新"
	ProjectNewHouseFitOut     ProjectType = "新成屋裝潢"
	ProjectOfficeCommercial   ProjectType = "辦公室/商業空間"
	ProjectCabinetryPartial   ProjectType = "系統櫃/木工/局部裝修"
	ProjectOtherSpecial       ProjectType = "其他/特殊需求"
)

// ProjectTypes lists the categories in form order. The first entry is the default.
var ProjectTypes = []ProjectType{
	ProjectOldHouseRenovation,
	ProjectNewHouseFitOut,
	ProjectOfficeCommercial,
	ProjectCabinetryPartial,
	ProjectOtherSpecial,
}

// CityOther selects the free-text location field.
const CityOther = "其他地區"

// Cities lists the location selector in form order.
var Cities = []string{"高雄市", "台南市", "台中市", "桃園市", "新北市", "台北市", "屏東縣", CityOther}

const (
	DefaultSizePing      = 30
	DefaultHouseAgeYears = 0
	MinSizePing          = 1
	MinHouseAgeYears     = 0
)

// ReportText is the raw Markdown returned by the text-generation service.
type ReportText string

// ConsultationRequest is built once per submission and discarded after the response is rendered.
type ConsultationRequest struct {
	Credential    string // never logged
	ProjectType   ProjectType
	Location      string
	SizePing      int
	HouseAgeYears int
	Budget        string
	Notes         string
}

// ErrInvalidRequest is wrapped by every field validation failure.
var ErrInvalidRequest = errors.New("invalid consultation request")

// Valid reports whether p is one of the fixed categories.
func (p ProjectType) Valid() bool {
	for _, known := range ProjectTypes {
		if p == known {
			return true
		}
	}
	return false
}

// IsCity reports whether city is on the selector list, including CityOther.
func IsCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}

// ResolveLocation picks the free-text location when the "other" entry is selected.
func ResolveLocation(city, custom string) string {
	if city == CityOther {
		return strings.TrimSpace(custom)
	}
	return city
}

// Validate checks the business fields. The credential is checked by the handler, not here.
func (r ConsultationRequest) Validate() error {
	if !r.ProjectType.Valid() {
		return fmt.Errorf("%w: unknown project type %q", ErrInvalidRequest, r.ProjectType)
	}
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidRequest)
	}
	if r.SizePing < MinSizePing {
		return fmt.Errorf("%w: size must be at least %d ping", ErrInvalidRequest, MinSizePing)
	}
	if r.HouseAgeYears < MinHouseAgeYears {
		return fmt.Errorf("%w: house age cannot be negative", ErrInvalidRequest)
	}
	return nil
}
