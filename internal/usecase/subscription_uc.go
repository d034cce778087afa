package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain"
	"isp-subscription-billing/internal/domain/model"
	"isp-subscription-billing/internal/domain/ports"
	"isp-subscription-billing/internal/domain/ports/repository"
	"isp-subscription-billing/internal/infra/logging"
)

// DashboardData is the read-only join view consumed by the staff dashboard.
// All three lists come from one read-only transaction.
type DashboardData struct {
	Subscriptions []*model.Subscription
	Users         []*model.User
	Packages      []*model.Package
}

// SubscriptionUseCase is the public surface of the subscription lifecycle
// and billing engine. Every mutating operation runs inside exactly one
// transaction; concurrent operations on the same subscription id serialize
// on the row lock taken by SubscriptionRepository.FindByID.
type SubscriptionUseCase interface {
	Create(ctx context.Context, userID, packageID string, startDate *time.Time, method model.PaymentMethod) (*model.Subscription, error)
	Renew(ctx context.Context, subscriptionID, packageID string, method model.PaymentMethod) (*model.Subscription, error)
	Update(ctx context.Context, subscriptionID, packageID string, startDate time.Time, status model.SubscriptionStatus) (*model.Subscription, error)
	Delete(ctx context.Context, subscriptionID string) error
	ExtendExpiry(ctx context.Context, subscriptionID string, newExpiry time.Time) error
	Dashboard(ctx context.Context) (*DashboardData, error)
	UserPayments(ctx context.Context, userID string) ([]*model.Payment, error)
	ReconcileStatuses(ctx context.Context) (int64, error)
}

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type subscriptionUC struct {
	users    repository.UserRepository
	packages repository.PackageRepository
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	renewals repository.RenewalRepository
	tm       repository.TransactionManager
	clock    ports.Clock

	log *zerolog.Logger
}

func NewSubscriptionUseCase(
	users repository.UserRepository,
	packages repository.PackageRepository,
	subs repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	renewals repository.RenewalRepository,
	tm repository.TransactionManager,
	clock ports.Clock,
	logger *zerolog.Logger,
) *subscriptionUC {
	ucLog := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{
		users:    users,
		packages: packages,
		subs:     subs,
		payments: payments,
		renewals: renewals,
		tm:       tm,
		clock:    clock,
		log:      &ucLog,
	}
}

// Create grants a fresh subscription and records one ledger entry at the
// package price. startDate defaults to now; a fresh grant never rolls over.
func (uc *subscriptionUC) Create(ctx context.Context, userID, packageID string, startDate *time.Time, method model.PaymentMethod) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Create")()
	if userID == "" || packageID == "" || !model.ValidPaymentMethod(method) {
		return nil, domain.ErrInvalidArgument
	}

	var sub *model.Subscription
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		user, err := uc.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		pkg, err := uc.packages.FindByID(ctx, tx, packageID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		start := now
		if startDate != nil {
			start = *startDate
		}
		s, err := model.NewSubscription(uuid.NewString(), user.ID, pkg, start, now)
		if err != nil {
			return err
		}
		if err := uc.subs.Insert(ctx, tx, s); err != nil {
			return err
		}
		if err := uc.payments.Insert(ctx, tx, &model.Payment{
			ID:             ulid.Make().String(),
			UserID:         user.ID,
			SubscriptionID: s.ID,
			Amount:         pkg.Price,
			Status:         model.PaymentStatusCompleted,
			Method:         method,
			PaymentDate:    now,
		}); err != nil {
			return err
		}
		sub = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("subscription_id", sub.ID).Str("user_id", userID).
		Str("package_id", packageID).Time("expires_at", sub.ExpiryDate).
		Msg("subscription created")
	return sub, nil
}

// Renew recomputes the service window from the subscription's current expiry
// (rolling unused days over), appends one renewal-history row and one ledger
// entry at the new package price, and mutates the existing row in place.
//
// The re-read of the subscription happens inside the transaction, behind the
// row lock, so two concurrent renewals of the same id cannot both apply the
// same pre-renewal expiry as their baseline.
func (uc *subscriptionUC) Renew(ctx context.Context, subscriptionID, packageID string, method model.PaymentMethod) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Renew")()
	if subscriptionID == "" || packageID == "" || !model.ValidPaymentMethod(method) {
		return nil, domain.ErrInvalidArgument
	}

	var sub *model.Subscription
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := uc.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		oldPkg, err := uc.packages.FindByID(ctx, tx, s.PackageID)
		if err != nil {
			return err
		}
		newPkg, err := uc.packages.FindByID(ctx, tx, packageID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		win := model.ComputeRenewal(now, s.ExpiryDate, newPkg.ValidityDays)

		if err := uc.renewals.Insert(ctx, tx, &model.Renewal{
			ID:                ulid.Make().String(),
			SubscriptionID:    s.ID,
			UserID:            s.UserID,
			OldSubscriptionID: s.ID,
			Amount:            newPkg.Price,
			OldAmount:         oldPkg.Price,
			RenewalDate:       now,
		}); err != nil {
			return err
		}
		if err := uc.payments.Insert(ctx, tx, &model.Payment{
			ID:             ulid.Make().String(),
			UserID:         s.UserID,
			SubscriptionID: s.ID,
			Amount:         newPkg.Price,
			Status:         model.PaymentStatusCompleted,
			Method:         method,
			PaymentDate:    now,
		}); err != nil {
			return err
		}

		s.PackageID = newPkg.ID
		s.StartDate = win.Start
		s.ExpiryDate = win.Expiry
		s.Status = s.DerivedStatus(now)
		if err := uc.subs.Update(ctx, tx, s); err != nil {
			return err
		}
		sub = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("subscription_id", sub.ID).Str("package_id", packageID).
		Time("starts_at", sub.StartDate).Time("expires_at", sub.ExpiryDate).
		Msg("subscription renewed")
	return sub, nil
}

// Update is the administrative correction path: it repoints the subscription
// at a package and recomputes expiry from the given start date with NO
// rollover, sets the status directly, and writes no ledger entry. It is a
// different business event from Renew and must stay one.
func (uc *subscriptionUC) Update(ctx context.Context, subscriptionID, packageID string, startDate time.Time, status model.SubscriptionStatus) (*model.Subscription, error) {
	if subscriptionID == "" || packageID == "" || startDate.IsZero() || !model.ValidStatus(status) {
		return nil, domain.ErrInvalidArgument
	}

	var sub *model.Subscription
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := uc.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		pkg, err := uc.packages.FindByID(ctx, tx, packageID)
		if err != nil {
			return err
		}

		s.PackageID = pkg.ID
		s.StartDate = startDate
		s.ExpiryDate = startDate.Add(pkg.Validity())
		s.Status = status
		if err := uc.subs.Update(ctx, tx, s); err != nil {
			return err
		}
		sub = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Bool("audit", true).Str("subscription_id", sub.ID).
		Str("package_id", packageID).Time("expires_at", sub.ExpiryDate).
		Msg("subscription corrected")
	return sub, nil
}

// Delete hard-deletes the subscription row. Payment and renewal history
// rows are left in place as the audit trail of money already recorded, even
// though their subscription_id now dangles.
func (uc *subscriptionUC) Delete(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return domain.ErrInvalidArgument
	}

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.subs.FindByID(ctx, tx, subscriptionID); err != nil {
			return err
		}
		return uc.subs.Delete(ctx, tx, subscriptionID)
	})
	if err != nil {
		return err
	}

	uc.log.Warn().Bool("audit", true).Str("subscription_id", subscriptionID).
		Msg("subscription hard-deleted; ledger rows retained")
	return nil
}

// ExtendExpiry force-sets the expiry date and reactivates the subscription,
// bypassing both the renewal calculator and the payment ledger. This is an
// operational escape hatch, not a billable event; it is logged with the
// audit marker so the bypass stays visible.
func (uc *subscriptionUC) ExtendExpiry(ctx context.Context, subscriptionID string, newExpiry time.Time) error {
	if subscriptionID == "" || newExpiry.IsZero() {
		return domain.ErrInvalidArgument
	}

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := uc.subs.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		s.ExpiryDate = newExpiry
		s.Status = model.SubscriptionStatusActive
		return uc.subs.Update(ctx, tx, s)
	})
	if err != nil {
		return err
	}

	uc.log.Warn().Bool("audit", true).Str("subscription_id", subscriptionID).
		Time("expires_at", newExpiry).Msg("expiry extended without billing")
	return nil
}

// Dashboard reads subscriptions, users and packages in one read-only
// transaction so the three lists agree with each other.
func (uc *subscriptionUC) Dashboard(ctx context.Context) (*DashboardData, error) {
	var data DashboardData
	txOpt := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := uc.tm.WithTx(ctx, txOpt, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if data.Subscriptions, err = uc.subs.List(ctx, tx); err != nil {
			return err
		}
		if data.Users, err = uc.users.List(ctx, tx); err != nil {
			return err
		}
		data.Packages, err = uc.packages.List(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// UserPayments returns the user's ledger entries, newest first.
func (uc *subscriptionUC) UserPayments(ctx context.Context, userID string) ([]*model.Payment, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := uc.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return nil, err
	}
	return uc.payments.ListByUser(ctx, repository.NoTX, userID)
}

// ReconcileStatuses recomputes the persisted status column from the date
// columns: pending subscriptions whose start has arrived become active,
// and lapsed ones become expired. Natural expiry needs no other mutation;
// this keeps the stored column within one recomputation of the truth.
// Returns the number of subscriptions newly marked expired.
func (uc *subscriptionUC) ReconcileStatuses(ctx context.Context) (int64, error) {
	var expired int64
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		now := uc.clock.Now()
		if _, err := uc.subs.ActivateDue(ctx, tx, now); err != nil {
			return err
		}
		var err error
		expired, err = uc.subs.MarkExpired(ctx, tx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
