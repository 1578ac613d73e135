package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ViolationType enum - closed set, the detector only reports these two
type ViolationType string

const (
	OvertakingFromLeft  ViolationType = "overtaking-from-left"
	OvertakingFromRight ViolationType = "overtaking-from-right"
)

// ViolationTypes lists every supported violation type.
var ViolationTypes = []ViolationType{
	OvertakingFromLeft,
	OvertakingFromRight,
}

// Valid reports whether t is one of the supported violation types.
func (t ViolationType) Valid() bool {
	for _, known := range ViolationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// VehicleType enum - open set, the detector may report types we have not seen yet
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleTruck VehicleType = "truck"
	VehicleBus   VehicleType = "bus"
)

// JSONB type for GORM - can handle both objects and arrays
type JSONB struct {
	Data interface{} `json:"-"`
}

// NewJSONB creates a new JSONB from any value
func NewJSONB(v interface{}) JSONB {
	return JSONB{Data: v}
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSONB) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &j.Data)
}

// MarshalJSON implements json.Marshaler
func (j JSONB) MarshalJSON() ([]byte, error) {
	if j.Data == nil {
		return []byte("null"), nil
	}
	return json.Marshal(j.Data)
}

func (j JSONB) Value() (driver.Value, error) {
	if j.Data == nil {
		return nil, nil
	}
	return json.Marshal(j.Data)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		j.Data = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j.Data)
}

// Violation model - one detected traffic violation.
//
// Date is stored as a YYYY-MM-DD string on purpose: lexicographic and
// chronological ordering coincide for that format, so every range filter
// in the stats engine is a plain string BETWEEN. Time is the local
// wall-clock HH:MM and is only used for hour bucketing.
type Violation struct {
	ID                 int64         `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Date               string        `gorm:"column:date;size:10;index" json:"date"`
	Time               string        `gorm:"column:time;size:5" json:"time"`
	LicensePlateNumber string        `gorm:"column:license_plate_number;index" json:"licensePlateNumber"`
	ViolationType      ViolationType `gorm:"column:violation_type;index" json:"violationType"`
	VehicleType        VehicleType   `gorm:"column:vehicle_type;index" json:"vehicleType"`
	StreetName         string        `gorm:"column:street_name;index" json:"streetName"`
	Latitude           float64       `gorm:"column:latitude" json:"latitude"`
	Longitude          float64       `gorm:"column:longitude" json:"longitude"`
	ZipCode            *string       `gorm:"column:zip_code" json:"zipCode,omitempty"`

	Metadata JSONB `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Violation) TableName() string {
	return "violations"
}
