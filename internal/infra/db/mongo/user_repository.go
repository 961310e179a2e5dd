package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection("agg_user")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "contact", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &UserRepository{col: col}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByContact(ctx context.Context, contact string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"contact": contact})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Insert(ctx context.Context, u *domainuser.User) error {
	_, err := r.col.InsertOne(ctx, newUserDocument(u))
	return err
}

// CreditIncome atomically increments the income ledger. Increments commute,
// so concurrent settlements crediting the same host never step on each other.
func (r *UserRepository) CreditIncome(ctx context.Context, id domainuser.ID, amount money.Money) error {
	return r.updateOne(ctx, id, bson.M{
		"$inc": bson.M{"income_amount": amount.Amount},
		"$set": bson.M{"updated_at": time.Now().UTC().UnixMilli()},
	})
}

func (r *UserRepository) AppendBooking(ctx context.Context, id domainuser.ID, bookingRef string) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"bookings": bookingRef},
		"$set":  bson.M{"updated_at": time.Now().UTC().UnixMilli()},
	})
}

func (r *UserRepository) AppendListing(ctx context.Context, id domainuser.ID, listingRef string) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"listings": listingRef},
		"$set":  bson.M{"updated_at": time.Now().UTC().UnixMilli()},
	})
}

func (r *UserRepository) SetWallet(ctx context.Context, id domainuser.ID, walletID string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"wallet_id": walletID, "updated_at": time.Now().UTC().UnixMilli()},
	})
}

func (r *UserRepository) updateOne(ctx context.Context, id domainuser.ID, update bson.M) error {
	result, err := r.col.UpdateByID(ctx, string(id), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

type userDocument struct {
	ID             string   `bson:"_id"`
	Name           string   `bson:"name"`
	Avatar         string   `bson:"avatar"`
	Contact        string   `bson:"contact"`
	PasswordHash   string   `bson:"password_hash"`
	WalletID       string   `bson:"wallet_id"`
	IncomeAmount   int64    `bson:"income_amount"`
	IncomeCurrency string   `bson:"income_currency"`
	Bookings       []string `bson:"bookings"`
	Listings       []string `bson:"listings"`
	CreatedAt      int64    `bson:"created_at"`
	UpdatedAt      int64    `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:             string(u.ID),
		Name:           u.Name,
		Avatar:         u.Avatar,
		Contact:        u.Contact,
		PasswordHash:   u.PasswordHash,
		WalletID:       u.WalletID,
		IncomeAmount:   u.Income.Amount,
		IncomeCurrency: u.Income.Currency,
		Bookings:       u.Bookings,
		Listings:       u.Listings,
		CreatedAt:      u.CreatedAt.UnixMilli(),
		UpdatedAt:      u.UpdatedAt.UnixMilli(),
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Name:         d.Name,
		Avatar:       d.Avatar,
		Contact:      d.Contact,
		PasswordHash: d.PasswordHash,
		WalletID:     d.WalletID,
		Income:       money.Money{Amount: d.IncomeAmount, Currency: d.IncomeCurrency},
		Bookings:     d.Bookings,
		Listings:     d.Listings,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}
