package auth

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/committy/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.service = New(Config{AdminKeyHash: string(hash)}, testutil.NopLogger())
}

func (s *ServiceSuite) TestCorrectKey() {
	s.True(s.service.Enabled())
	s.NoError(s.service.VerifyAdminKey("hunter2"))
}

func (s *ServiceSuite) TestWrongKey() {
	s.ErrorIs(s.service.VerifyAdminKey("hunter3"), ErrInvalidAdminKey)
	s.ErrorIs(s.service.VerifyAdminKey(""), ErrInvalidAdminKey)
}

func (s *ServiceSuite) TestDisabledWithoutHash() {
	service := New(Config{}, testutil.NopLogger())
	s.False(service.Enabled())
	s.ErrorIs(service.VerifyAdminKey("hunter2"), ErrAdminDisabled)
}

func (s *ServiceSuite) TestMalformedHashRejectsEverything() {
	service := New(Config{AdminKeyHash: "not-a-bcrypt-hash"}, testutil.NopLogger())
	s.ErrorIs(service.VerifyAdminKey("not-a-bcrypt-hash"), ErrInvalidAdminKey)
}

func (s *ServiceSuite) TestHashKeyRoundTrip() {
	hash, err := HashKey("s3cret")
	s.Require().NoError(err)

	service := New(Config{AdminKeyHash: hash}, testutil.NopLogger())
	s.NoError(service.VerifyAdminKey("s3cret"))

	_, err = HashKey("")
	s.Error(err)
}
