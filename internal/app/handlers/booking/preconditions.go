package booking

import (
	"time"

	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/daterange"
	domainuser "stayhub/internal/domain/user"
)

// parseStayRange turns the transport date strings into a validated inclusive
// range. Ordering violations and malformed dates both surface as
// ErrInvalidDateRange.
func parseStayRange(checkIn, checkOut string) (daterange.DateRange, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return daterange.DateRange{}, ErrInvalidDateRange
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return daterange.DateRange{}, ErrInvalidDateRange
	}
	dr, err := daterange.New(in, out)
	if err != nil {
		return daterange.DateRange{}, ErrInvalidDateRange
	}
	return dr, nil
}

// checkSelfBooking rejects a host reserving their own listing.
func checkSelfBooking(l *domainlisting.Listing, viewer domainuser.ID) error {
	if l.OwnedBy(viewer) {
		return ErrSelfBooking
	}
	return nil
}

// checkHostPayable requires a payment-receiving host. A missing host document
// and a missing wallet are the same failure from the tenant's point of view.
func checkHostPayable(host *domainuser.User) error {
	if host == nil || !host.HasWallet() {
		return ErrHostPaymentUnavailable
	}
	return nil
}
