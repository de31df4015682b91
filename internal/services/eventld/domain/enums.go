package domain

import "strings"

// AttendanceMode is the declared attendance hint of an event.
type AttendanceMode string

const (
	AttendanceUnset    AttendanceMode = ""
	AttendancePhysical AttendanceMode = "physical"
	AttendanceOnline   AttendanceMode = "online"
	AttendanceMixed    AttendanceMode = "mixed"
)

// Status is the lifecycle state of an event.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusRescheduled Status = "rescheduled"
	StatusCancelled   Status = "cancelled"
	StatusPostponed   Status = "postponed"
	StatusMovedOnline Status = "moved-online"
	StatusCompleted   Status = "completed"
)

// Availability is the sales state of a ticket tier.
type Availability string

const (
	AvailabilityInStock  Availability = "in-stock"
	AvailabilitySoldOut  Availability = "sold-out"
	AvailabilityPreOrder Availability = "pre-order"
	AvailabilityLimited  Availability = "limited"
)

const schemaOrg = "https://schema.org/"

var statusSchema = map[Status]string{
	StatusScheduled:   "EventScheduled",
	StatusRescheduled: "EventRescheduled",
	StatusCancelled:   "EventCancelled",
	StatusPostponed:   "EventPostponed",
	StatusMovedOnline: "EventMovedOnline",
	StatusCompleted:   "EventCompleted",
}

var attendanceSchema = map[AttendanceMode]string{
	AttendancePhysical: "OfflineEventAttendanceMode",
	AttendanceOnline:   "OnlineEventAttendanceMode",
	AttendanceMixed:    "MixedEventAttendanceMode",
}

var availabilitySchema = map[Availability]string{
	AvailabilityInStock:  "InStock",
	AvailabilitySoldOut:  "SoldOut",
	AvailabilityPreOrder: "PreOrder",
	AvailabilityLimited:  "LimitedAvailability",
}

var attendanceAliases = map[string]AttendanceMode{
	"offline":   AttendancePhysical,
	"in-person": AttendancePhysical,
	"virtual":   AttendanceOnline,
	"hybrid":    AttendanceMixed,
}

var availabilityAliases = map[string]Availability{
	"instock":             AvailabilityInStock,
	"soldout":             AvailabilitySoldOut,
	"preorder":            AvailabilityPreOrder,
	"limitedavailability": AvailabilityLimited,
}

// SchemaURL returns the schema.org EventStatusType URL.
func (s Status) SchemaURL() string {
	return schemaOrg + statusSchema[s]
}

// SchemaURL returns the schema.org EventAttendanceModeEnumeration URL.
func (m AttendanceMode) SchemaURL() string {
	return schemaOrg + attendanceSchema[m]
}

// SchemaURL returns the schema.org ItemAvailability URL.
func (a Availability) SchemaURL() string {
	return schemaOrg + availabilitySchema[a]
}

// ParseStatus accepts the short form ("cancelled"), the schema.org name
// ("EventCancelled") or its URL.
func ParseStatus(raw string) (Status, bool) {
	value := normalizeEnum(raw)
	if value == "canceled" {
		value = string(StatusCancelled)
	}
	for status, name := range statusSchema {
		if value == string(status) || value == strings.ToLower(name) {
			return status, true
		}
	}
	return "", false
}

// ParseAttendanceMode accepts the short form ("online"), a common alias or the
// schema.org name or URL.
func ParseAttendanceMode(raw string) (AttendanceMode, bool) {
	value := normalizeEnum(raw)
	if mode, ok := attendanceAliases[value]; ok {
		return mode, true
	}
	for mode, name := range attendanceSchema {
		if value == string(mode) || value == strings.ToLower(name) {
			return mode, true
		}
	}
	return "", false
}

// ParseAvailability accepts the short form ("sold-out") or the schema.org name or URL.
func ParseAvailability(raw string) (Availability, bool) {
	value := normalizeEnum(raw)
	if availability, ok := availabilityAliases[strings.ReplaceAll(value, "-", "")]; ok {
		return availability, true
	}
	for availability := range availabilitySchema {
		if value == string(availability) {
			return availability, true
		}
	}
	return "", false
}

func normalizeEnum(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "https://schema.org/")
	value = strings.TrimPrefix(value, "http://schema.org/")
	return strings.ReplaceAll(value, "_", "-")
}
