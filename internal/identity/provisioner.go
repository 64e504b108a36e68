package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

const cpfAttribute = "custom:cpf"

var ErrProvisioning = errors.New("identity provisioning failed")

type ProvisionOutcome string

const (
	Created        ProvisionOutcome = "created"
	AlreadyExisted ProvisionOutcome = "already_existed"
)

// Provisioner makes sure a user pool account exists for a CPF and carries the
// shared password.
type Provisioner struct {
	api        CognitoAPI
	userPoolID string
	password   string
}

func NewProvisioner(api CognitoAPI, userPoolID, password string) *Provisioner {
	return &Provisioner{api: api, userPoolID: userPoolID, password: password}
}

// Ensure creates the account when missing and then always sets the shared
// password as permanent. Concurrent calls for the same cpf converge because
// the pool rejects duplicate usernames and the password value is constant.
func (p *Provisioner) Ensure(ctx context.Context, cpf string) (ProvisionOutcome, error) {
	outcome, err := p.create(ctx, cpf)
	if err != nil {
		return "", err
	}

	_, err = p.api.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(cpf),
		Password:   aws.String(p.password),
		Permanent:  true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: set password: %w", ErrProvisioning, err)
	}

	return outcome, nil
}

func (p *Provisioner) create(ctx context.Context, cpf string) (ProvisionOutcome, error) {
	_, err := p.api.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(cpf),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(cpfAttribute), Value: aws.String(cpf)},
		},
		MessageAction:          types.MessageActionTypeSuppress,
		DesiredDeliveryMediums: []types.DeliveryMediumType{},
	})
	if err == nil {
		return Created, nil
	}

	var exists *types.UsernameExistsException
	if errors.As(err, &exists) {
		return AlreadyExisted, nil
	}

	return "", fmt.Errorf("%w: create user: %w", ErrProvisioning, err)
}
