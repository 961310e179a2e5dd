package listings

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

const hostListingKey = "listings.host"

var (
	ErrViewerRequired = errors.New("listings: viewer can't be found")
	ErrInvalidAddress = errors.New("listings: invalid address input")
)

type HostListingCommand struct {
	CommandID       string `validate:"required"`
	ViewerID        string
	Title           string `validate:"required,max=100"`
	Description     string `validate:"max=5000"`
	Type            string `validate:"required"`
	Address         string `validate:"required"`
	Price           int64  `validate:"gt=0"`
	NumOfGuests     int    `validate:"gte=1"`
	ImageBase64     string
	IdempotencyKeyV string
}

func (c HostListingCommand) Key() string { return hostListingKey }

func (c HostListingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c HostListingCommand) ResultPrototype() any { return &HostListingResult{} }

type HostListingResult struct {
	ListingID string `json:"listing_id"`
	ImageURL  string `json:"image_url"`
}

// HostListingHandler creates a listing for an authenticated host: geocode the
// free-text address, store the photo, insert the listing with an empty
// availability index and append the listing reference to the host's ledger.
type HostListingHandler struct {
	Listings domainlisting.Repository
	Users    domainuser.Repository
	Geocoder policies.Geocoder
	Images   policies.ImageStore
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *HostListingHandler) Handle(ctx context.Context, cmd HostListingCommand) (*HostListingResult, error) {
	if cmd.ViewerID == "" {
		return nil, ErrViewerRequired
	}
	viewer, err := h.Users.ByID(ctx, domainuser.ID(cmd.ViewerID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrViewerRequired
		}
		return nil, err
	}

	region, err := h.Geocoder.Geocode(ctx, cmd.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}
	if region.Country == "" || region.Admin == "" || region.City == "" {
		return nil, ErrInvalidAddress
	}

	imageURL, err := h.uploadImage(ctx, cmd.CommandID, cmd.ImageBase64)
	if err != nil {
		return nil, err
	}

	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(cmd.CommandID),
		Host:        viewer.ID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Type:        domainlisting.Type(strings.ToUpper(strings.TrimSpace(cmd.Type))),
		ImageURL:    imageURL,
		Address:     cmd.Address,
		Country:     region.Country,
		Admin:       region.Admin,
		City:        region.City,
		Price:       cmd.Price,
		NumOfGuests: cmd.NumOfGuests,
		Now:         h.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := h.Listings.Insert(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}
	if err := h.Users.AppendListing(ctx, viewer.ID, string(l.ID)); err != nil {
		return nil, fmt.Errorf("failed to append listing to host: %w", err)
	}

	pending := l.PendingEvents()
	l.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	return &HostListingResult{ListingID: string(l.ID), ImageURL: imageURL}, nil
}

func (h *HostListingHandler) uploadImage(ctx context.Context, key, encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" || h.Images == nil {
		return "", nil
	}
	// Clients send data URLs; strip the prefix before decoding.
	contentType := "image/jpeg"
	if idx := strings.Index(encoded, ";base64,"); idx > 0 {
		if strings.HasPrefix(encoded, "data:") {
			contentType = encoded[len("data:"):idx]
		}
		encoded = encoded[idx+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode listing image: %w", err)
	}
	url, err := h.Images.Upload(ctx, "listings/"+key, bytes.NewReader(raw), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload listing image: %w", err)
	}
	return url, nil
}

func (h *HostListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *HostListingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[HostListingCommand, *HostListingResult] = (*HostListingHandler)(nil)
var _ middleware.IdempotentCommand = (*HostListingCommand)(nil)
