package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainrange "stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.col.InsertOne(ctx, newBookingDocument(b))
	return err
}

func (r *BookingRepository) ByIDs(ctx context.Context, ids []domainbooking.ID, page domainlisting.Page) (domainbooking.Collection, error) {
	total := int64(len(ids))
	ids = pageIDs(ids, page)
	if len(ids) == 0 {
		return domainbooking.Collection{Total: total}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, string(id))
	}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return domainbooking.Collection{}, err
	}
	defer cursor.Close(ctx)
	byID := make(map[domainbooking.ID]*domainbooking.Booking, len(keys))
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainbooking.Collection{}, err
		}
		b := doc.toAggregate()
		byID[b.ID] = b
	}
	if err := cursor.Err(); err != nil {
		return domainbooking.Collection{}, err
	}
	ordered := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return domainbooking.Collection{Total: total, Result: ordered}, nil
}

type bookingDocument struct {
	ID            string `bson:"_id"`
	ListingID     string `bson:"listing_id"`
	TenantID      string `bson:"tenant_id"`
	CheckIn       int64  `bson:"check_in"`
	CheckOut      int64  `bson:"check_out"`
	TotalAmount   int64  `bson:"total_amount"`
	TotalCurrency string `bson:"total_currency"`
	CreatedAt     int64  `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		ListingID:     string(b.ListingID),
		TenantID:      string(b.TenantID),
		CheckIn:       b.Range.CheckIn.UnixMilli(),
		CheckOut:      b.Range.CheckOut.UnixMilli(),
		TotalAmount:   b.Total.Amount,
		TotalCurrency: b.Total.Currency,
		CreatedAt:     b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.ID(d.ID),
		ListingID: domainlisting.ID(d.ListingID),
		TenantID:  domainuser.ID(d.TenantID),
		Range:     domainrange.DateRange{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)},
		Total:     money.Money{Amount: d.TotalAmount, Currency: d.TotalCurrency},
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}
