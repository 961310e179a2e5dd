package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/internal/domain/availability"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("agg_listing")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "country", Value: 1}, {Key: "admin", Value: 1}, {Key: "city", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Insert(ctx context.Context, l *domainlisting.Listing) error {
	_, err := r.col.InsertOne(ctx, newListingDocument(l))
	return err
}

// CommitReservation swaps in the recomputed index and appends the booking
// reference in one update, guarded by the version the index was computed
// from. A stale version matches nothing and surfaces ErrVersionConflict.
func (r *ListingRepository) CommitReservation(ctx context.Context, res domainlisting.Reservation) error {
	filter := bson.M{"_id": string(res.ListingID), "version": res.Version}
	update := bson.M{
		"$set": bson.M{
			"bookings_index": res.Index.ToWire(),
			"version":        res.Version + 1,
			"updated_at":     time.Now().UTC().UnixMilli(),
		},
		"$push": bson.M{"bookings": res.BookingRef},
	}
	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, countErr := r.col.CountDocuments(ctx, bson.M{"_id": string(res.ListingID)})
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return domainlisting.ErrNotFound
		}
		return domainlisting.ErrVersionConflict
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	filter := bson.M{}
	if params.Country != "" {
		filter["country"] = params.Country
	}
	if params.Admin != "" {
		filter["admin"] = params.Admin
	}
	if params.City != "" {
		filter["city"] = params.City
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}
	opts := options.Find().
		SetSkip(int64(params.Page.Offset())).
		SetLimit(int64(params.Page.Limit))
	switch params.Sort {
	case domainlisting.SortPriceLowToHigh:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case domainlisting.SortPriceHighToLow:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}
	defer cursor.Close(ctx)
	listings, err := decodeListings(ctx, cursor)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}
	return domainlisting.SearchResult{Total: total, Result: listings}, nil
}

// ByIDs pages through the given references preserving their order, which is
// the order the aggregates recorded them in.
func (r *ListingRepository) ByIDs(ctx context.Context, ids []domainlisting.ID, page domainlisting.Page) (domainlisting.SearchResult, error) {
	total := int64(len(ids))
	ids = pageIDs(ids, page)
	if len(ids) == 0 {
		return domainlisting.SearchResult{Total: total}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, string(id))
	}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return domainlisting.SearchResult{}, err
	}
	defer cursor.Close(ctx)
	listings, err := decodeListings(ctx, cursor)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}
	byID := make(map[domainlisting.ID]*domainlisting.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	ordered := make([]*domainlisting.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return domainlisting.SearchResult{Total: total, Result: ordered}, nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domainlisting.Listing, error) {
	var listings []*domainlisting.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		l, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, cursor.Err()
}

func pageIDs[T any](ids []T, page domainlisting.Page) []T {
	offset := page.Offset()
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if page.Limit > 0 && page.Limit < len(ids) {
		ids = ids[:page.Limit]
	}
	return ids
}

type listingDocument struct {
	ID          string            `bson:"_id"`
	Host        string            `bson:"host"`
	Title       string            `bson:"title"`
	Description string            `bson:"description"`
	Type        string            `bson:"type"`
	ImageURL    string            `bson:"image_url"`
	Address     string            `bson:"address"`
	Country     string            `bson:"country"`
	Admin       string            `bson:"admin"`
	City        string            `bson:"city"`
	Price       int64             `bson:"price"`
	NumOfGuests int               `bson:"num_of_guests"`
	Bookings    []string          `bson:"bookings"`
	Index       availability.Wire `bson:"bookings_index"`
	Version     int64             `bson:"version"`
	CreatedAt   int64             `bson:"created_at"`
	UpdatedAt   int64             `bson:"updated_at"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		Host:        string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Type:        string(l.Type),
		ImageURL:    l.ImageURL,
		Address:     l.Address,
		Country:     l.Country,
		Admin:       l.Admin,
		City:        l.City,
		Price:       l.Price,
		NumOfGuests: l.NumOfGuests,
		Bookings:    l.Bookings,
		Index:       l.Index.ToWire(),
		Version:     l.Version,
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() (*domainlisting.Listing, error) {
	index, err := availability.FromWire(d.Index)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing %s has a corrupt index: %w", d.ID, err)
	}
	return &domainlisting.Listing{
		ID:          domainlisting.ID(d.ID),
		Host:        domainuser.ID(d.Host),
		Title:       d.Title,
		Description: d.Description,
		Type:        domainlisting.Type(d.Type),
		ImageURL:    d.ImageURL,
		Address:     d.Address,
		Country:     d.Country,
		Admin:       d.Admin,
		City:        d.City,
		Price:       d.Price,
		NumOfGuests: d.NumOfGuests,
		Bookings:    d.Bookings,
		Index:       index,
		Version:     d.Version,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
