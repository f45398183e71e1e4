package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"client-manager-api/internal/application/apperr"
	"client-manager-api/internal/domain/client"
)

const (
	FieldName   = "nombre"
	FieldEmail  = "email"
	FieldPhone  = "telefono"
	FieldStatus = "estado"

	maxNameLen  = 100
	maxEmailLen = 120
	maxPhoneLen = 20
)

const (
	MsgEmptyBody   = "No se proporcionaron datos de entrada"
	MsgEmptyBatch  = "La lista de clientes no puede estar vacía"
	MsgInvalidJSON = "El cuerpo de la solicitud no es un JSON válido"
	MsgWrongShape  = "Se esperaba un objeto o una lista de objetos"
	MsgBadPage     = "El número de página debe ser mayor a 0"
	MsgBadPerPage  = "El número de resultados por página debe ser un entero"
	MsgBadStatus   = "El estado debe ser 'activo' o 'inactivo'"
)

type (
	// Violations maps a field name to every rule it broke.
	Violations map[string][]string

	PayloadKind int
	// Payload is the shape of a create/update body: exactly one of Single
	// or Batch is set, according to Kind.
	Payload struct {
		Kind   PayloadKind
		Single map[string]any
		Batch  []map[string]any
	}

	BatchItem struct {
		Index      int
		Draft      client.Draft
		Violations Violations
	}

	ClientValidator struct {
		v                    *playground.Validate
		emailCaseInsensitive bool
	}
)

const (
	PayloadSingle PayloadKind = iota + 1
	PayloadBatch
)

func (v Violations) Add(field, msg string) { v[field] = append(v[field], msg) }

func NewClientValidator(emailCaseInsensitive bool) *ClientValidator {
	return &ClientValidator{
		v:                    playground.New(),
		emailCaseInsensitive: emailCaseInsensitive,
	}
}

// ParsePayload decodes a request body into a single record or a batch.
// Anything that is not an object or a non-empty list of objects is a
// BAD_REQUEST, never a validation error.
func ParsePayload(body []byte, maxBatch int) (Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Payload{}, apperr.BadRequest(MsgEmptyBody)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Payload{}, apperr.BadRequest(MsgInvalidJSON)
	}

	switch v := raw.(type) {
	case map[string]any:
		if len(v) == 0 {
			return Payload{}, apperr.BadRequest(MsgEmptyBody)
		}
		return Payload{Kind: PayloadSingle, Single: v}, nil
	case []any:
		if len(v) == 0 {
			return Payload{}, apperr.BadRequest(MsgEmptyBatch)
		}
		if maxBatch > 0 && len(v) > maxBatch {
			return Payload{}, apperr.BadRequest(
				fmt.Sprintf("La lista de clientes no puede superar %d elementos", maxBatch),
			)
		}
		items := make([]map[string]any, len(v))
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return Payload{}, apperr.BadRequest(
					fmt.Sprintf("El elemento %d de la lista no es un objeto", i),
				)
			}
			items[i] = m
		}
		return Payload{Kind: PayloadBatch, Batch: items}, nil
	case nil:
		return Payload{}, apperr.BadRequest(MsgEmptyBody)
	default:
		return Payload{}, apperr.BadRequest(MsgWrongShape)
	}
}

// ValidateClient applies the create rules to one raw record. Unknown fields
// are ignored.
func (cv *ClientValidator) ValidateClient(raw map[string]any) (client.Draft, Violations) {
	errs := make(Violations)
	var d client.Draft

	if name, ok := cv.name(raw, errs); ok {
		d.Name = name
	}
	if email, ok := cv.email(raw, errs); ok {
		d.Email = email
	}
	if phone, _, ok := cv.phone(raw, errs); ok {
		d.Phone = phone
	}
	d.Status = client.StatusActive
	if status, present, ok := cv.status(raw, errs); present && ok {
		d.Status = status
	}

	if len(errs) > 0 {
		return client.Draft{}, errs
	}
	return d, nil
}

// ValidateBatch validates every record independently and keeps input order.
func (cv *ClientValidator) ValidateBatch(raws []map[string]any) []BatchItem {
	items := make([]BatchItem, len(raws))
	for i, raw := range raws {
		d, errs := cv.ValidateClient(raw)
		items[i] = BatchItem{Index: i, Draft: d, Violations: errs}
	}
	return items
}

// ValidateClientPatch applies the same rules to the fields present in raw.
// Absent fields stay unset in the returned patch.
func (cv *ClientValidator) ValidateClientPatch(raw map[string]any) (client.Patch, Violations) {
	errs := make(Violations)
	var p client.Patch

	if _, present := raw[FieldName]; present {
		if name, ok := cv.name(raw, errs); ok {
			p.Name = &name
		}
	}
	if _, present := raw[FieldEmail]; present {
		if email, ok := cv.email(raw, errs); ok {
			p.Email = &email
		}
	}
	if phone, present, ok := cv.phone(raw, errs); present && ok {
		p.Phone = phone
		p.PhoneSet = true
	}
	if status, present, ok := cv.status(raw, errs); present && ok {
		p.Status = &status
	}

	if len(errs) > 0 {
		return client.Patch{}, errs
	}
	return p, nil
}

// NormalizeEmail applies the configured case policy to an email address.
func (cv *ClientValidator) NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if cv.emailCaseInsensitive {
		return strings.ToLower(email)
	}
	return email
}

func (cv *ClientValidator) name(raw map[string]any, errs Violations) (string, bool) {
	v, present := raw[FieldName]
	if !present || v == nil {
		errs.Add(FieldName, "El nombre es requerido")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		errs.Add(FieldName, "El nombre debe ser una cadena de texto")
		return "", false
	}

	name := norm.NFC.String(strings.TrimSpace(s))
	switch {
	case name == "" && s != "":
		errs.Add(FieldName, "El nombre no puede contener solo espacios en blanco")
		return "", false
	case name == "" || utf8.RuneCountInString(name) > maxNameLen:
		errs.Add(FieldName, fmt.Sprintf("El nombre debe tener entre 1 y %d caracteres", maxNameLen))
		return "", false
	}

	return name, true
}

func (cv *ClientValidator) email(raw map[string]any, errs Violations) (string, bool) {
	v, present := raw[FieldEmail]
	if !present || v == nil {
		errs.Add(FieldEmail, "El email es requerido")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		errs.Add(FieldEmail, "El email debe ser una cadena de texto")
		return "", false
	}

	email := cv.NormalizeEmail(s)
	if email == "" {
		errs.Add(FieldEmail, "El email es requerido")
		return "", false
	}

	valid := true
	if err := cv.v.Var(email, "email"); err != nil {
		errs.Add(FieldEmail, "El formato del email no es válido")
		valid = false
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		errs.Add(FieldEmail, fmt.Sprintf("El email no puede exceder %d caracteres", maxEmailLen))
		valid = false
	}

	return email, valid
}

// phone returns the normalised phone, whether the key was present and
// whether the value is acceptable. An explicit null or blank string clears
// the phone.
func (cv *ClientValidator) phone(raw map[string]any, errs Violations) (*string, bool, bool) {
	v, present := raw[FieldPhone]
	if !present {
		return nil, false, true
	}
	if v == nil {
		return nil, true, true
	}
	s, ok := v.(string)
	if !ok {
		errs.Add(FieldPhone, "El teléfono debe ser una cadena de texto")
		return nil, true, false
	}

	phone := strings.TrimSpace(s)
	if phone == "" {
		return nil, true, true
	}
	if utf8.RuneCountInString(phone) > maxPhoneLen {
		errs.Add(FieldPhone, fmt.Sprintf("El teléfono no puede exceder %d caracteres", maxPhoneLen))
		return nil, true, false
	}

	return &phone, true, true
}

func (cv *ClientValidator) status(raw map[string]any, errs Violations) (client.Status, bool, bool) {
	v, present := raw[FieldStatus]
	if !present {
		return "", false, true
	}
	s, ok := v.(string)
	if !ok || !client.Status(s).Valid() {
		errs.Add(FieldStatus, MsgBadStatus)
		return "", true, false
	}
	return client.Status(s), true, true
}

func ValidatePage(page string) (int, error) {
	if page == "" {
		return 1, nil
	}
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		return 0, errors.New(MsgBadPage)
	}
	return p, nil
}

// ValidatePerPage parses per_page and clamps it to [1, max].
func ValidatePerPage(perPage string, def, max int) (int, error) {
	if perPage == "" {
		return def, nil
	}
	n, err := strconv.Atoi(perPage)
	if err != nil {
		return 0, errors.New(MsgBadPerPage)
	}
	if n < 1 {
		n = 1
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

func ValidateStatus(status string) (client.Status, error) {
	if status == "" {
		return "", nil
	}
	s := client.Status(status)
	if !s.Valid() {
		return "", errors.New(MsgBadStatus)
	}
	return s, nil
}

func ParseID(s string) (client.ID, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return client.ID(id), true
}
