package audit

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"clinic-app-server/internal/models"
)

// Resource names the kind of entity a route mutates.
type Resource string

const (
	ResourceAppointment Resource = "appointment"
	ResourceDoctor      Resource = "doctor"
	ResourcePatient     Resource = "patient"
	ResourceRecord      Resource = "medical record"
)

// Mutation is a committed, successful write as seen at the HTTP boundary.
type Mutation struct {
	Method string
	// Route is the registered route pattern, e.g. /api/appointment/:id.
	Route  string
	Path   string
	Params map[string]string
	Body   map[string]any
	// Name is the display name or identifier of the affected entity after the write, when known.
	Name  string
	Actor *models.Actor
}

type route struct {
	resource Resource
	id       func(Mutation) string
}

func param(name string) func(Mutation) string {
	return func(m Mutation) string { return m.Params[name] }
}

var routes = map[string]route{
	"/api/appointment":           {resource: ResourceAppointment},
	"/api/appointment/:id":       {resource: ResourceAppointment, id: param("id")},
	"/api/doctor":                {resource: ResourceDoctor},
	"/api/doctor/:id":            {resource: ResourceDoctor, id: param("id")},
	"/api/patient":               {resource: ResourcePatient},
	"/api/patient/:id":           {resource: ResourcePatient, id: param("id")},
	"/api/record/:appointmentId": {resource: ResourceRecord, id: param("appointmentId")},
}

var methodActions = map[string]string{
	http.MethodPost:   "created",
	http.MethodPut:    "updated",
	http.MethodPatch:  "updated",
	http.MethodDelete: "deleted",
}

// Narration is the message and metadata of one log entry.
type Narration struct {
	Resource   Resource
	ResourceID string
	Message    string
	Metadata   map[string]any
}

// Narrate turns a mutation into a log message. ok is false for reads and for
// routes that are not audited. patientName resolves the patient booked on an
// appointment and is only called for new medical records.
func Narrate(m Mutation, patientName func(appointmentID string) string) (n Narration, ok bool) {
	if m.Method == http.MethodGet || m.Method == http.MethodOptions {
		return Narration{}, false
	}
	r, ok := routes[m.Route]
	if !ok {
		return Narration{}, false
	}

	n = Narration{Resource: r.resource}
	if r.id != nil {
		n.ResourceID = r.id(m)
	}
	n.Metadata = map[string]any{
		"method":   m.Method,
		"path":     m.Path,
		"resource": string(r.resource),
	}
	if n.ResourceID != "" {
		n.Metadata["resourceId"] = n.ResourceID
	} else {
		n.Metadata["resourceId"] = nil
	}

	update := m.Method == http.MethodPut || m.Method == http.MethodPatch
	switch r.resource {
	case ResourceAppointment:
		switch {
		case m.Method == http.MethodPost:
			n.Message = "New appointment requested by patient."
			// The display id only exists once the booking is stored.
			if m.Name != "" {
				n.ResourceID = m.Name
				n.Metadata["resourceId"] = m.Name
			}
			copyFields(n.Metadata, m.Body, map[string]string{
				"patient_id":       "patientId",
				"doctor_id":        "doctorId",
				"appointment_date": "date",
				"appointment_time": "time",
			})
		case update:
			n.Message = appointmentUpdate(m, n.ResourceID)
			if status := bodyString(m.Body, "status"); status != "" {
				n.Metadata["status"] = status
			}
		case m.Method == http.MethodDelete:
			n.Message = fmt.Sprintf("Appointment #%s deleted.", n.ResourceID)
		}

	case ResourceDoctor:
		switch {
		case m.Method == http.MethodPost:
			n.Message = "New doctor registered: " + firstNonEmpty(bodyString(m.Body, "name"), "Dr. Unknown")
			copyFields(n.Metadata, m.Body, map[string]string{"email": "email"})
		case update:
			n.Message = fmt.Sprintf("Dr. %s updated profile.", firstNonEmpty(m.Name, bodyString(m.Body, "name"), "Dr. Unknown"))
			n.Metadata["updatedFields"] = bodyKeys(m.Body)
		case m.Method == http.MethodDelete:
			n.Message = "Doctor account deleted: ID " + n.ResourceID
		}

	case ResourcePatient:
		switch {
		case m.Method == http.MethodPost:
			n.Message = "New patient registered: " + bodyString(m.Body, "name")
			copyFields(n.Metadata, m.Body, map[string]string{"email": "email"})
		case update:
			n.Message = fmt.Sprintf("Patient %s updated profile.", firstNonEmpty(m.Name, bodyString(m.Body, "name"), "Unknown"))
			n.Metadata["updatedFields"] = bodyKeys(m.Body)
		case m.Method == http.MethodDelete:
			n.Message = "Patient account deleted: ID " + n.ResourceID
		}

	case ResourceRecord:
		if m.Method == http.MethodPost {
			name := ""
			if patientName != nil {
				name = patientName(n.ResourceID)
			}
			n.Message = "Dr. added medical record for patient " + firstNonEmpty(name, "Unknown")
			n.Metadata["appointmentId"] = n.ResourceID
		}
	}

	if n.Message == "" {
		action, ok := methodActions[m.Method]
		if !ok {
			action = strings.ToLower(m.Method)
		}
		n.Message = fmt.Sprintf("%s %s", capitalize(string(r.resource)), action)
	}
	return n, true
}

func appointmentUpdate(m Mutation, id string) string {
	if m.Actor == nil {
		return ""
	}
	status := strings.ToLower(strings.TrimSpace(bodyString(m.Body, "status")))

	switch m.Actor.Role {
	case models.RolePatient:
		if status == "cancelled" {
			return fmt.Sprintf("Patient cancelled appointment #%s.", id)
		}
		if bodyString(m.Body, "appointment_date") != "" || bodyString(m.Body, "appointment_time") != "" {
			return fmt.Sprintf("Patient rescheduled appointment #%s.", id)
		}
	case models.RoleDoctor:
		switch status {
		case "scheduled", "accepted":
			return fmt.Sprintf("Dr. approved appointment #%s.", id)
		case "rejected":
			return fmt.Sprintf("Dr. rejected appointment #%s.", id)
		case "completed":
			return fmt.Sprintf("Dr. marked appointment #%s as completed.", id)
		}
	}
	return ""
}

func copyFields(dst, body map[string]any, fields map[string]string) {
	for from, to := range fields {
		if v, ok := body[from]; ok && v != nil {
			dst[to] = v
		}
	}
}

func bodyString(body map[string]any, key string) string {
	v, ok := body[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// bodyKeys lists the submitted fields, sorted so entries are stable.
func bodyKeys(body map[string]any) []string {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
