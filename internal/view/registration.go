package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/school-directory/internal/client"
	"github.com/stemsi/school-directory/internal/model"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrImageRequired  = errors.New("image is required")
	ErrUnknownField   = errors.New("unknown form field")
)

// Messages shown by the registration form.
const (
	MsgImageRequired = "Please select an image file."
	MsgSchoolAdded   = "School added successfully."
)

// RegistrationState is the submit state of the form.
type RegistrationState int

const (
	StateIdle RegistrationState = iota
	StateSubmitting
)

// RegistrationView is the add-school form.
type RegistrationView struct {
	api      SchoolAPI
	notifier *Notifier
	newKey   func() string

	mu        sync.Mutex
	state     RegistrationState
	fields    model.SchoolFields
	imageName string
	image     []byte
}

// NewRegistrationView creates an empty form.
func NewRegistrationView(api SchoolAPI, notifier *Notifier) *RegistrationView {
	return &RegistrationView{
		api:      api,
		notifier: notifier,
		newKey:   uuid.NewString,
	}
}

// SetField sets a text field by its wire name.
func (v *RegistrationView) SetField(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch name {
	case "name":
		v.fields.Name = value
	case "address":
		v.fields.Address = value
	case "city":
		v.fields.City = value
	case "state":
		v.fields.State = value
	case "contact":
		v.fields.Contact = value
	case "email_id":
		v.fields.EmailID = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SelectImage sets the image to upload. A nil data clears the selection.
func (v *RegistrationView) SelectImage(name string, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if data == nil {
		v.imageName, v.image = "", nil
		return
	}
	v.imageName, v.image = name, data
}

func (v *RegistrationView) Fields() model.SchoolFields {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fields
}

func (v *RegistrationView) HasImage() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.image != nil
}

func (v *RegistrationView) State() RegistrationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Submit sends the form. Without an image it fails locally and makes no
// request. On success the form is cleared.
func (v *RegistrationView) Submit(ctx context.Context) error {
	v.mu.Lock()
	if v.state == StateSubmitting {
		v.mu.Unlock()
		return ErrSubmitInFlight
	}
	if v.image == nil {
		v.mu.Unlock()
		v.notifier.Show(MsgImageRequired, false)
		return ErrImageRequired
	}
	v.state = StateSubmitting
	fields, imageName, image := v.fields, v.imageName, v.image
	v.mu.Unlock()

	_, err := v.api.AddSchool(ctx, fields, imageName, bytes.NewReader(image), v.newKey())

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = StateIdle

	if err != nil {
		v.notifier.Show(failureMessage(err), false)
		return err
	}

	v.notifier.Show(MsgSchoolAdded, true)
	v.fields = model.SchoolFields{}
	v.imageName, v.image = "", nil
	return nil
}

func failureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Server error %d: %s", apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Sprintf("Network error: %s", err)
}
