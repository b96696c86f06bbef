package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projectly/internal/model"
)

// TokenIssuer signs the access/refresh pair handed out on login.
type TokenIssuer interface {
	Issue(uid uint, email string) (model.TokenPair, error)
	Refresh(refresh string) (string, error)
}

type AuthService struct {
	db        *gorm.DB
	tokens    TokenIssuer
	providers IdentityProvider
	validate  *validator.Validate
}

func NewAuthService(db *gorm.DB, tokens TokenIssuer, providers IdentityProvider) *AuthService {
	return &AuthService{db: db, tokens: tokens, providers: providers, validate: validator.New()}
}

func ValidRole(role string) bool {
	switch role {
	case model.RoleHead, model.RoleProgramManager, model.RoleCommitteeMember:
		return true
	}
	return false
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	confirm := req.ConfirmPassword
	if confirm == "" {
		confirm = req.ConfirmPasswordCamel
	}
	email := strings.TrimSpace(req.Email)

	v := &ValidationError{}
	if email == "" {
		v.Add("email", "This field is required.")
	} else if s.validate.Var(email, "email") != nil {
		v.Add("email", "Enter a valid email address.")
	}
	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "This field is required.")
	}
	if !ValidRole(req.Role) {
		v.Add("role", fmt.Sprintf("%q is not a valid choice.", req.Role))
	}
	checkPassword(v, req.Password, confirm)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	first, last, _ := strings.Cut(strings.TrimSpace(req.Name), " ")
	u := model.User{
		Email:     email,
		Password:  string(hash),
		FirstName: first,
		LastName:  last,
		Profile:   &model.Profile{Role: req.Role},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return invalid("email", "A user with that email already exists.")
		}
		return createUser(tx, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func checkPassword(v *ValidationError, password, confirm string) {
	if password != confirm {
		v.Add("password", "Password fields didn't match.")
	}
	if len(password) < 8 {
		v.Add("password", "Password must be at least 8 characters.")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		v.Add("password", "Password must contain at least one number.")
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		v.Add("password", "Password must contain at least one uppercase letter.")
	}
}

// createUser inserts u together with its profile.
func createUser(tx *gorm.DB, u *model.User) error {
	if u.Profile == nil {
		u.Profile = &model.Profile{}
	}
	if err := tx.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return invalid("email", "A user with that email already exists.")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (model.TokenPair, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TokenPair{}, ErrInvalidCredentials
		}
		return model.TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if u.Password == "" || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return model.TokenPair{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID, u.Email)
}

// SocialLogin signs in through an external identity provider, creating the
// user and linking the provider account on first use.
func (s *AuthService) SocialLogin(ctx context.Context, provider, accessToken string) (model.TokenPair, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !SupportedProvider(provider) {
		return model.TokenPair{}, invalid("provider", "Unsupported provider")
	}
	id, err := s.providers.UserInfo(ctx, provider, accessToken)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if id.Email == "" {
		return model.TokenPair{}, ErrNoProviderEmail
	}

	var u model.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", id.Email).First(&u).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			first, last, _ := strings.Cut(id.Name, " ")
			u = model.User{Email: id.Email, FirstName: first, LastName: last, IsEmailVerified: true}
			if err := createUser(tx, &u); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("load user: %w", err)
		}

		acct := model.SocialAccount{}
		return tx.Omit(clause.Associations).
			Where(model.SocialAccount{Provider: provider, ProviderID: id.ID}).
			Attrs(model.SocialAccount{UserID: u.ID}).
			FirstOrCreate(&acct).Error
	})
	if err != nil {
		return model.TokenPair{}, err
	}
	return s.tokens.Issue(u.ID, u.Email)
}

func (s *AuthService) RefreshToken(refresh string) (string, error) {
	access, err := s.tokens.Refresh(refresh)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	return access, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&u, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// SetRole creates or updates the caller's profile with role.
func (s *AuthService) SetRole(ctx context.Context, c Caller, role string) (*model.Profile, error) {
	if !ValidRole(role) {
		return nil, invalid("role", fmt.Sprintf("%q is not a valid choice.", role))
	}
	var p model.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return syncProfile(tx, c.UserID, role, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func syncProfile(tx *gorm.DB, userID uint, role string, p *model.Profile) error {
	if err := tx.Where(model.Profile{UserID: userID}).FirstOrCreate(p).Error; err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if p.Role == role {
		return nil
	}
	p.Role = role
	if err := tx.Save(p).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// CreateSuperuser bootstraps an administrator account.
func (s *AuthService) CreateSuperuser(ctx context.Context, email, password, name string) (*model.User, error) {
	v := &ValidationError{}
	if s.validate.Var(email, "required,email") != nil {
		v.Add("email", "Enter a valid email address.")
	}
	if password == "" {
		v.Add("password", "This field is required.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	u := model.User{
		Email: email, Password: string(hash), FirstName: first, LastName: last,
		IsStaff: true, IsSuperuser: true, IsEmailVerified: true,
		Profile: &model.Profile{Role: model.RoleHead},
	}
	if err := createUser(s.db.WithContext(ctx), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FirstUser returns the lowest-ID user, the stand-in owner for anonymous
// uploads and public card creation.
func (s *AuthService) FirstUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Order("id").First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}
