package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/stemsi/school-directory/internal/client"
	"github.com/stemsi/school-directory/internal/model"
)

// DisplayLimit caps how many schools the listing shows.
const DisplayLimit = 6

// Messages shown by the listing.
const (
	MsgLoadFailed    = "Failed to load data. Please try again later."
	MsgNoSchools     = "No schools found in the database."
	MsgSchoolDeleted = "School deleted successfully!"
)

var ErrNoPendingDelete = errors.New("no delete awaiting confirmation")

// ListingState is the full-view state of the listing.
type ListingState int

const (
	ListingLoading ListingState = iota
	ListingReady
	ListingError
)

// Card is one rendered school.
type Card struct {
	ID       int64
	Name     string
	Address  string
	Contact  string
	Email    string
	ImageURL string
}

// ListingView shows the first DisplayLimit schools and deletes with confirmation.
type ListingView struct {
	api      SchoolAPI
	notifier *Notifier

	mu        sync.Mutex
	state     ListingState
	errMsg    string
	schools   []model.School
	pendingID *int64
}

// NewListingView creates a listing in the loading state. Call Load to fetch.
func NewListingView(api SchoolAPI, notifier *Notifier) *ListingView {
	return &ListingView{api: api, notifier: notifier}
}

// Load re-fetches every school.
func (v *ListingView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.state = ListingLoading
	v.mu.Unlock()

	schools, err := v.api.ListSchools(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = ListingError
		v.errMsg = MsgLoadFailed
		return err
	}
	v.state = ListingReady
	v.errMsg = ""
	v.schools = schools
	return nil
}

func (v *ListingView) State() ListingState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the error-state message.
func (v *ListingView) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// Visible returns the schools on screen, in the order the API returned them.
func (v *ListingView) Visible() []model.School {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(v.schools)
	if n > DisplayLimit {
		n = DisplayLimit
	}
	out := make([]model.School, n)
	copy(out, v.schools[:n])
	return out
}

// Cards formats the visible schools.
func (v *ListingView) Cards() []Card {
	visible := v.Visible()
	cards := make([]Card, 0, len(visible))
	for _, s := range visible {
		cards = append(cards, Card{
			ID:       s.ID,
			Name:     s.Name,
			Address:  fmt.Sprintf("%s, %s, %s", s.Address, s.City, s.State),
			Contact:  s.Contact,
			Email:    s.EmailID,
			ImageURL: v.api.ImageURL(s.Image),
		})
	}
	return cards
}

// RequestDelete opens the confirmation for id.
func (v *ListingView) RequestDelete(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingID = &id
}

// PendingDelete returns the id awaiting confirmation.
func (v *ListingView) PendingDelete() (int64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pendingID == nil {
		return 0, false
	}
	return *v.pendingID, true
}

// CancelDelete closes the confirmation without a request.
func (v *ListingView) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingID = nil
}

// ConfirmDelete deletes the pending school and re-fetches the list on
// success. On failure the list is kept and a notification is shown.
func (v *ListingView) ConfirmDelete(ctx context.Context) error {
	v.mu.Lock()
	if v.pendingID == nil {
		v.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := *v.pendingID
	v.pendingID = nil
	v.mu.Unlock()

	if err := v.api.DeleteSchool(ctx, id); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			v.notifier.Show("Error deleting school: "+apiErr.Message, false)
		} else {
			v.notifier.Show(fmt.Sprintf("Network error: %s", err), false)
		}
		return err
	}

	v.notifier.Show(MsgSchoolDeleted, true)
	return v.Load(ctx)
}

// Render writes the listing as text.
func (v *ListingView) Render(w io.Writer) error {
	switch v.State() {
	case ListingLoading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case ListingError:
		_, err := fmt.Fprintf(w, "Error: %s\n", v.Err())
		return err
	}

	cards := v.Cards()
	var b strings.Builder
	b.WriteString("List of Schools\n\n")
	if len(cards) == 0 {
		b.WriteString(MsgNoSchools + "\n")
	}
	for _, c := range cards {
		fmt.Fprintf(&b, "[%d] %s\n", c.ID, c.Name)
		fmt.Fprintf(&b, "    Address: %s\n", c.Address)
		fmt.Fprintf(&b, "    Contact: %s\n", c.Contact)
		fmt.Fprintf(&b, "    Email: %s\n", c.Email)
		if c.ImageURL != "" {
			fmt.Fprintf(&b, "    Image: %s\n", c.ImageURL)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
