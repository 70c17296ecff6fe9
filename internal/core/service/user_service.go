package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

type userService struct {
	passengers ports.UserRepository
	drivers    ports.UserRepository
	validator  ports.PayloadValidator
	hasher     ports.PasswordHasher
	tokens     ports.TokenManager
	guard      ports.RegistrationGuard
	audit      ports.AuditPublisher
	now        func() time.Time
	log        zerolog.Logger

	decoyOnce sync.Once
	decoy     string
}

// Option configures optional collaborators of the user service.
type Option func(*userService)

// WithRegistrationGuard serialises concurrent registrations of one email.
func WithRegistrationGuard(g ports.RegistrationGuard) Option {
	return func(s *userService) { s.guard = g }
}

// WithAuditPublisher emits an audit event after every successful write.
func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(s *userService) { s.audit = p }
}

// WithClock overrides the time source for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *userService) { s.now = now }
}

// NewUserService returns a UserService implementation.
func NewUserService(
	passengers ports.UserRepository,
	drivers ports.UserRepository,
	validator ports.PayloadValidator,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	log zerolog.Logger,
	opts ...Option,
) ports.UserService {
	s := &userService{
		passengers: passengers,
		drivers:    drivers,
		validator:  validator,
		hasher:     hasher,
		tokens:     tokens,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) RegisterPassenger(ctx context.Context, payload []byte) (*domain.Passenger, error) {
	in, err := s.validator.PassengerRegistration(payload)
	if err != nil {
		return nil, err
	}

	release, err := s.reserveEmail(ctx, s.passengers, in.Email)
	if err != nil {
		return nil, err
	}
	defer release()

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register passenger: %w", err)
	}

	now := s.now().UTC()
	p := &domain.Passenger{
		Account: domain.Account{
			Email:     in.Email,
			Role:      domain.RolePassenger,
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		Username:               in.Username,
		Gender:                 in.Gender,
		PhoneNumber:            in.PhoneNumber,
		DateOfBirth:            in.DateOfBirth,
		ProfilePicture:         in.ProfilePicture,
		PreferredPaymentMethod: in.PreferredPaymentMethod,
		WalletBalance:          0,
		IsActive:               true,
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = *in.EmergencyContact
	}

	id, err := s.passengers.Insert(ctx, &domain.UserRecord{User: domain.PassengerUser(p), PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("register passenger: %w", err)
	}
	p.ID = id

	s.publish(id, domain.RolePassenger, domain.AuditRegistered, nil)
	s.log.Info().Str("user_id", id).Str("role", string(domain.RolePassenger)).Msg("user registered")
	return p, nil
}

func (s *userService) RegisterDriver(ctx context.Context, payload []byte) (*domain.Driver, error) {
	in, err := s.validator.DriverRegistration(payload)
	if err != nil {
		return nil, err
	}

	release, err := s.reserveEmail(ctx, s.drivers, in.Email)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	if !in.LicenseExpiryDate.After(now) {
		return nil, domain.ErrExpiredLicense
	}
	if !in.VehicleDetails.InsuranceExpiryDate.After(now) {
		return nil, domain.ErrExpiredInsurance
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register driver: %w", err)
	}

	d := &domain.Driver{
		Account: domain.Account{
			Email:     in.Email,
			Role:      domain.RoleDriver,
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		PhoneNumber:       in.PhoneNumber,
		DateOfBirth:       in.DateOfBirth,
		ProfilePicture:    in.ProfilePicture,
		LicenseNumber:     in.LicenseNumber,
		LicenseExpiryDate: in.LicenseExpiryDate,
		VehicleDetails:    in.VehicleDetails,
		Rating:            0,
		TotalRides:        0,
		IsActive:          true,
		IsAvailable:       false,
		Documents:         in.Documents,
	}
	if in.BankDetails != nil {
		d.BankDetails = *in.BankDetails
	}

	id, err := s.drivers.Insert(ctx, &domain.UserRecord{User: domain.DriverUser(d), PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("register driver: %w", err)
	}
	d.ID = id

	s.publish(id, domain.RoleDriver, domain.AuditRegistered, nil)
	s.log.Info().Str("user_id", id).Str("role", string(domain.RoleDriver)).Msg("user registered")
	return d, nil
}

// reserveEmail takes the optional registration lock and checks the partition
// for an existing record. The returned release func is always safe to call.
func (s *userService) reserveEmail(ctx context.Context, repo ports.UserRepository, email string) (func(), error) {
	release := func() {}

	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, repo.Role(), email)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("role", string(repo.Role())).Msg("registration lock unavailable, continuing without it")
		case !ok:
			return release, domain.ErrDuplicateEmail
		default:
			release = func() {
				if err := s.guard.Release(context.WithoutCancel(ctx), repo.Role(), email); err != nil {
					s.log.Warn().Err(err).Str("role", string(repo.Role())).Msg("failed to release registration lock")
				}
			}
		}
	}

	_, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		release()
		return func() {}, domain.ErrDuplicateEmail
	case errors.Is(err, domain.ErrNotFound):
		return release, nil
	default:
		release()
		return func() {}, fmt.Errorf("check email: %w", err)
	}
}

// Login never reveals whether the email exists: every credential failure is
// ErrInvalidCredentials. It performs no store writes.
func (s *userService) Login(ctx context.Context, payload []byte) (*ports.LoginResult, error) {
	in, err := s.validator.Login(payload)
	if err != nil {
		return nil, err
	}

	rec, err := s.findUser(func(repo ports.UserRepository) (*domain.UserRecord, error) {
		return repo.FindByEmail(ctx, in.Email)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown emails pay for a hash comparison like wrong passwords do.
			s.hasher.Compare(in.Password, s.decoyHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if rec.PasswordHash == "" {
		s.hasher.Compare(in.Password, s.decoyHash())
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Compare(in.Password, rec.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.ClaimsFor(rec.User))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Debug().Str("user_id", rec.User.ID()).Str("role", string(rec.User.Role())).Msg("user logged in")
	return &ports.LoginResult{User: rec.User, Token: token}, nil
}

// decoyHash is hashed with the configured hasher so its cost matches real
// credentials. It is computed once on first use.
func (s *userService) decoyHash() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-never-matches")
		if err != nil {
			s.log.Warn().Err(err).Msg("compute decoy password hash")
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

func (s *userService) GetProfile(ctx context.Context, id string) (domain.User, error) {
	rec, err := s.findUser(func(repo ports.UserRepository) (*domain.UserRecord, error) {
		return repo.FindByID(ctx, id)
	})
	if err != nil {
		return domain.User{}, err
	}
	return rec.User, nil
}

func (s *userService) UpdatePassenger(ctx context.Context, id string, payload []byte) (*domain.Passenger, error) {
	patch, err := s.validator.PassengerUpdate(payload)
	if err != nil {
		return nil, err
	}
	patch.UpdatedAt = s.now().UTC()

	rec, err := s.update(ctx, s.passengers, id, patch)
	if err != nil {
		return nil, err
	}
	return rec.User.Passenger, nil
}

func (s *userService) UpdateDriver(ctx context.Context, id string, payload []byte) (*domain.Driver, error) {
	patch, err := s.validator.DriverUpdate(payload)
	if err != nil {
		return nil, err
	}
	patch.UpdatedAt = s.now().UTC()

	rec, err := s.update(ctx, s.drivers, id, patch)
	if err != nil {
		return nil, err
	}
	return rec.User.Driver, nil
}

func (s *userService) update(ctx context.Context, repo ports.UserRepository, id string, patch domain.Patch) (*domain.UserRecord, error) {
	rec, err := repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update %s: %w", repo.Role(), err)
	}
	if rec.User.Role() != repo.Role() {
		return nil, fmt.Errorf("update %s: %w: record has role %q", repo.Role(), domain.ErrStore, rec.User.Role())
	}

	s.publish(id, repo.Role(), domain.AuditUpdated, changedFields(patch))
	s.log.Info().Str("user_id", id).Str("role", string(repo.Role())).Msg("profile updated")
	return rec, nil
}

// DeleteByID removes the first record matching id, passengers first.
func (s *userService) DeleteByID(ctx context.Context, id string) (bool, error) {
	for _, repo := range s.partitions() {
		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			return false, fmt.Errorf("delete %s: %w", repo.Role(), err)
		}
		if deleted {
			s.publish(id, repo.Role(), domain.AuditDeleted, nil)
			s.log.Info().Str("user_id", id).Str("role", string(repo.Role())).Msg("user deleted")
			return true, nil
		}
	}
	return false, nil
}

func (s *userService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var repo ports.UserRepository
	switch role {
	case domain.RolePassenger:
		repo = s.passengers
	case domain.RoleDriver:
		repo = s.drivers
	default:
		return nil, domain.NewValidationError("role", "role must be one of: passenger, driver")
	}
	return s.list(ctx, repo)
}

func (s *userService) ListAll(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0)
	for _, repo := range s.partitions() {
		users, err := s.list(ctx, repo)
		if err != nil {
			return nil, err
		}
		out = append(out, users...)
	}
	return out, nil
}

func (s *userService) list(ctx context.Context, repo ports.UserRepository) ([]domain.User, error) {
	recs, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", repo.Role(), err)
	}
	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.User)
	}
	return users, nil
}

// partitions returns the repositories in lookup order. Passengers always
// come first, so a record present in both partitions resolves to the
// passenger variant.
func (s *userService) partitions() []ports.UserRepository {
	return []ports.UserRepository{s.passengers, s.drivers}
}

func (s *userService) findUser(lookup func(ports.UserRepository) (*domain.UserRecord, error)) (*domain.UserRecord, error) {
	for _, repo := range s.partitions() {
		rec, err := lookup(repo)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound
}

func (s *userService) publish(id string, role domain.Role, action domain.AuditAction, fields []string) {
	if s.audit == nil {
		return
	}
	s.audit.Publish(domain.AuditEvent{
		UserID:    id,
		Role:      role,
		Action:    action,
		Timestamp: s.now().UTC(),
		Fields:    fields,
	})
}

// changedFields lists the client-provided keys of a patch in stable order.
func changedFields(p domain.Patch) []string {
	fields := p.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "updatedAt" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
