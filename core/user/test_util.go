package user

import (
	"github.com/revisehub/revisehub/core"
)

// NewServiceMock builds a Service for tests; pair it with the console email
// service mock so reset emails are captured instead of sent.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}
