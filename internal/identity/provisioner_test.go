package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpf-signin/internal/identity/identitytest"
)

const (
	testPoolID   = "us-east-1_test"
	testPassword = "SharedPassw0rd!"
)

func TestProvisioner_CreatesUser(t *testing.T) {
	pool := identitytest.NewUserPool()
	provisioner := NewProvisioner(pool, testPoolID, testPassword)

	outcome, err := provisioner.Ensure(context.Background(), "12345678900")

	require.NoError(t, err)
	assert.Equal(t, Created, outcome)

	user, ok := pool.User("12345678900")
	require.True(t, ok)
	assert.Equal(t, testPassword, user.Password)
	assert.True(t, user.Permanent)
	assert.Equal(t, "12345678900", user.Attributes["custom:cpf"])

	create := pool.LastCreate
	require.NotNil(t, create)
	assert.Equal(t, testPoolID, aws.ToString(create.UserPoolId))
	assert.Equal(t, types.MessageActionTypeSuppress, create.MessageAction)
	assert.Empty(t, create.DesiredDeliveryMediums)
}

func TestProvisioner_ExistingUserIsIdempotent(t *testing.T) {
	pool := identitytest.NewUserPool()
	provisioner := NewProvisioner(pool, testPoolID, testPassword)

	first, err := provisioner.Ensure(context.Background(), "12345678900")
	require.NoError(t, err)
	second, err := provisioner.Ensure(context.Background(), "12345678900")
	require.NoError(t, err)

	assert.Equal(t, Created, first)
	assert.Equal(t, AlreadyExisted, second)
	assert.Equal(t, 1, pool.UserCount())
	assert.Equal(t, 2, pool.CreateCalls)
	assert.Equal(t, 2, pool.SetPasswordCalls)
}

func TestProvisioner_SetsPasswordEvenWhenUserExisted(t *testing.T) {
	pool := identitytest.NewUserPool()
	provisioner := NewProvisioner(pool, testPoolID, testPassword)
	_, err := NewProvisioner(pool, testPoolID, "SomeOtherPassw0rd!").Ensure(context.Background(), "12345678900")
	require.NoError(t, err)

	outcome, err := provisioner.Ensure(context.Background(), "12345678900")

	require.NoError(t, err)
	assert.Equal(t, AlreadyExisted, outcome)
	user, _ := pool.User("12345678900")
	assert.Equal(t, testPassword, user.Password)
	assert.True(t, pool.LastSetPassword.Permanent)
}

func TestProvisioner_CreateFailure(t *testing.T) {
	pool := identitytest.NewUserPool()
	pool.CreateErr = &types.InvalidParameterException{Message: aws.String("bad attribute")}

	_, err := NewProvisioner(pool, testPoolID, testPassword).Ensure(context.Background(), "12345678900")

	require.ErrorIs(t, err, ErrProvisioning)
	assert.Equal(t, "InvalidParameterException", ErrorCode(err))
	assert.Equal(t, 0, pool.SetPasswordCalls)
}

func TestProvisioner_SetPasswordFailure(t *testing.T) {
	pool := identitytest.NewUserPool()
	pool.SetPasswordErr = &types.InvalidPasswordException{Message: aws.String("policy")}

	_, err := NewProvisioner(pool, testPoolID, testPassword).Ensure(context.Background(), "12345678900")

	require.ErrorIs(t, err, ErrProvisioning)
	var policyErr *types.InvalidPasswordException
	assert.True(t, errors.As(err, &policyErr))
}

func TestProvisioner_ConcurrentFirstTimeCalls(t *testing.T) {
	pool := identitytest.NewUserPool()
	provisioner := NewProvisioner(pool, testPoolID, testPassword)

	const workers = 8
	outcomes := make([]ProvisionOutcome, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = provisioner.Ensure(context.Background(), "12345678900")
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if outcomes[i] == Created {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, pool.UserCount())
}
