// Package identitytest provides an in-memory Cognito user pool for tests.
package identitytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("identitytest-signing-key")

type User struct {
	Username   string
	Sub        string
	Password   string
	Permanent  bool
	Attributes map[string]string
}

// UserPool enforces username uniqueness and the permanent-password rule the
// way the real service does. Injected errors take precedence over behavior.
type UserPool struct {
	mu    sync.Mutex
	users map[string]*User
	seq   int

	CreateErr       error
	SetPasswordErr  error
	InitiateAuthErr error
	// Challenge, when set, is returned by InitiateAuth instead of tokens.
	Challenge types.ChallengeNameType
	// IDTokenCPF overrides the custom:cpf claim of issued ID tokens.
	IDTokenCPF string

	CreateCalls       int
	SetPasswordCalls  int
	InitiateAuthCalls int
	LastCreate        *cip.AdminCreateUserInput
	LastSetPassword   *cip.AdminSetUserPasswordInput
	LastInitiateAuth  *cip.InitiateAuthInput
}

func NewUserPool() *UserPool {
	return &UserPool{users: make(map[string]*User)}
}

func (p *UserPool) User(username string) (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[username]
	if !ok {
		return User{}, false
	}
	return *user, true
}

func (p *UserPool) UserCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}

func (p *UserPool) AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.CreateCalls++
	p.LastCreate = params
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}

	username := aws.ToString(params.Username)
	if _, ok := p.users[username]; ok {
		return nil, &types.UsernameExistsException{Message: aws.String("User account already exists")}
	}

	attributes := make(map[string]string, len(params.UserAttributes))
	for _, attr := range params.UserAttributes {
		attributes[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}
	p.users[username] = &User{
		Username:   username,
		Sub:        uuid.NewString(),
		Attributes: attributes,
	}

	return &cip.AdminCreateUserOutput{
		User: &types.UserType{
			Username:   aws.String(username),
			UserStatus: types.UserStatusTypeForceChangePassword,
		},
	}, nil
}

func (p *UserPool) AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SetPasswordCalls++
	p.LastSetPassword = params
	if p.SetPasswordErr != nil {
		return nil, p.SetPasswordErr
	}

	user, ok := p.users[aws.ToString(params.Username)]
	if !ok {
		return nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")}
	}
	user.Password = aws.ToString(params.Password)
	user.Permanent = params.Permanent

	return &cip.AdminSetUserPasswordOutput{}, nil
}

func (p *UserPool) InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.InitiateAuthCalls++
	p.LastInitiateAuth = params
	if p.InitiateAuthErr != nil {
		return nil, p.InitiateAuthErr
	}
	if params.AuthFlow != types.AuthFlowTypeUserPasswordAuth {
		return nil, &types.InvalidParameterException{Message: aws.String("unsupported auth flow")}
	}

	username := params.AuthParameters["USERNAME"]
	user, ok := p.users[username]
	if !ok {
		return nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")}
	}
	if user.Password != params.AuthParameters["PASSWORD"] {
		return nil, &types.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}
	}
	if !user.Permanent {
		return &cip.InitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}, nil
	}
	if p.Challenge != "" {
		return &cip.InitiateAuthOutput{ChallengeName: p.Challenge}, nil
	}

	p.seq++
	cpf := user.Attributes["custom:cpf"]
	if p.IDTokenCPF != "" {
		cpf = p.IDTokenCPF
	}
	now := time.Now()

	idToken, err := sign(jwt.MapClaims{
		"sub":        user.Sub,
		"custom:cpf": cpf,
		"token_use":  "id",
		"aud":        aws.ToString(params.ClientId),
		"iat":        now.Unix(),
		"exp":        now.Add(time.Hour).Unix(),
		"jti":        fmt.Sprintf("id-%d", p.seq),
	})
	if err != nil {
		return nil, err
	}
	accessToken, err := sign(jwt.MapClaims{
		"sub":       user.Sub,
		"username":  user.Username,
		"token_use": "access",
		"client_id": aws.ToString(params.ClientId),
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
		"jti":       fmt.Sprintf("access-%d", p.seq),
	})
	if err != nil {
		return nil, err
	}

	return &cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String(accessToken),
			IdToken:      aws.String(idToken),
			RefreshToken: aws.String(uuid.NewString()),
			ExpiresIn:    3600,
			TokenType:    aws.String("Bearer"),
		},
	}, nil
}

func sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}
