package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	domainuser "stayhub/internal/domain/user"
)

const settleBookingKey = "booking.settle"

// reservationAttempts bounds the compare-and-swap retry loop on the listing
// write. Contention past this point is reported as a persistence fault.
const reservationAttempts = 3

type SettleBookingCommand struct {
	CommandID       string `validate:"required"`
	ListingID       string `validate:"required"`
	ViewerID        string
	Source          string `validate:"required"`
	CheckIn         string `validate:"required"`
	CheckOut        string `validate:"required"`
	IdempotencyKeyV string
}

func (c SettleBookingCommand) Key() string { return settleBookingKey }

func (c SettleBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SettleBookingCommand) ResultPrototype() any { return &SettleBookingResult{} }

type SettleBookingResult struct {
	BookingID string `json:"booking_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Total     int64  `json:"total"`
}

// SettleBookingHandler runs the whole settlement as one logical unit of work:
// authorize, validate, recompute the availability index, charge, then persist
// the booking and the denormalized ledger records. The index is extended and
// verified before the charge, so a tenant is never charged for a conflicting
// stay; everything after the charge that fails degrades to a PersistenceError.
type SettleBookingHandler struct {
	Listings domainlisting.Repository
	Users    domainuser.Repository
	Bookings domainbooking.Repository
	Payments policies.PaymentGateway
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Currency string
	Now      func() time.Time
}

func (h *SettleBookingHandler) Handle(ctx context.Context, cmd SettleBookingCommand) (*SettleBookingResult, error) {
	if cmd.ViewerID == "" {
		return nil, ErrUnauthenticated
	}
	viewer, err := h.Users.ByID(ctx, domainuser.ID(cmd.ViewerID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	l, err := h.Listings.ByID(ctx, domainlisting.ID(cmd.ListingID))
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if err := checkSelfBooking(l, viewer.ID); err != nil {
		return nil, err
	}

	dr, err := parseStayRange(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}

	host, err := h.Users.ByID(ctx, l.Host)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrHostPaymentUnavailable
		}
		return nil, err
	}
	if err := checkHostPayable(host); err != nil {
		return nil, err
	}

	extended, err := l.Index.Extend(dr)
	if err != nil {
		return nil, err
	}

	total, err := domainbooking.Quote(l.Price, h.currency(), dr)
	if err != nil {
		return nil, err
	}

	// Point of no return: from here on the tenant's card has been charged and
	// the settlement must run to completion or end in a PersistenceError.
	if err := h.Payments.Charge(ctx, total, cmd.Source, host.WalletID); err != nil {
		return nil, &PaymentError{Err: err}
	}

	now := h.now()
	record, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.ID(cmd.CommandID),
		ListingID: l.ID,
		TenantID:  viewer.ID,
		Range:     dr,
		Total:     total,
		CreatedAt: now,
	})
	if err != nil {
		return nil, h.fatal("booking construction", cmd.CommandID, err)
	}
	if err := h.Bookings.Insert(ctx, record); err != nil {
		return nil, h.fatal("booking insert", cmd.CommandID, err)
	}

	if err := h.commitReservation(ctx, l, extended, dr, record.ID); err != nil {
		return nil, h.fatal("listing reservation write", cmd.CommandID, err)
	}

	if err := h.Users.CreditIncome(ctx, host.ID, total); err != nil {
		return nil, h.fatal("host income credit", cmd.CommandID, err)
	}
	if err := h.Users.AppendBooking(ctx, viewer.ID, string(record.ID)); err != nil {
		return nil, h.fatal("tenant booking append", cmd.CommandID, err)
	}

	h.recordSettledEvent(ctx, record, l.Host)

	if h.Logger != nil {
		h.Logger.Info("booking settled",
			"booking_id", record.ID,
			"listing_id", l.ID,
			"tenant_id", viewer.ID,
			"total", total.Amount,
			"nights", dr.Nights(),
		)
	}

	return &SettleBookingResult{
		BookingID: string(record.ID),
		CheckIn:   cmd.CheckIn,
		CheckOut:  cmd.CheckOut,
		Total:     total.Amount,
	}, nil
}

// commitReservation writes the extended index and booking reference with a
// version-stamped conditional update. On a stale version the listing is
// re-read and the range re-extended before the next attempt; a conflict
// surfacing at this stage means another settlement won the race after our
// charge, which is exactly the partial-settlement fault PersistenceError
// exists for.
func (h *SettleBookingHandler) commitReservation(
	ctx context.Context,
	l *domainlisting.Listing,
	extended availability.Index,
	dr daterange.DateRange,
	bookingID domainbooking.ID,
) error {
	version := l.Version
	for attempt := 0; ; attempt++ {
		err := h.Listings.CommitReservation(ctx, domainlisting.Reservation{
			ListingID:  l.ID,
			Version:    version,
			Index:      extended,
			BookingRef: string(bookingID),
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainlisting.ErrVersionConflict) || attempt+1 >= reservationAttempts {
			return err
		}
		fresh, readErr := h.Listings.ByID(ctx, l.ID)
		if readErr != nil {
			return readErr
		}
		extended, err = fresh.Index.Extend(dr)
		if err != nil {
			return err
		}
		version = fresh.Version
	}
}

func (h *SettleBookingHandler) fatal(step, bookingID string, err error) error {
	perr := &PersistenceError{Step: step, BookingID: bookingID, Err: err}
	if h.Logger != nil {
		h.Logger.Error("settlement left partial state after charge",
			"step", step,
			"booking_id", bookingID,
			"error", err,
		)
	}
	return perr
}

func (h *SettleBookingHandler) recordSettledEvent(ctx context.Context, b *domainbooking.Booking, host domainuser.ID) {
	ev := domainbooking.BookingSettled{
		BookingID: b.ID,
		ListingID: b.ListingID,
		TenantID:  b.TenantID,
		HostID:    host,
		Range:     b.Range,
		Total:     b.Total,
		At:        b.CreatedAt,
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), []events.DomainEvent{ev}); err != nil && h.Logger != nil {
		// The booking itself is durable; a lost event is reconcilable.
		h.Logger.Error("settlement event not recorded", "booking_id", b.ID, "error", err)
	}
}

func (h *SettleBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *SettleBookingHandler) currency() string {
	if h.Currency != "" {
		return h.Currency
	}
	return "USD"
}

func (h *SettleBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[SettleBookingCommand, *SettleBookingResult] = (*SettleBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*SettleBookingCommand)(nil)
