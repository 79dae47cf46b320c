package controllers

import (
	"testing"

	"autoapply/models"

	"github.com/stretchr/testify/assert"
)

func validTarget() models.ApplicationTarget {
	return models.ApplicationTarget{URL: "https://jobs.lever.co/acme/abc", JobID: "job-1"}
}

func validProfile() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		FullName: "Jordan Rivera",
		Email:    "jordan@example.com",
	}
}

func TestValidateApplyRequestAccepts(t *testing.T) {
	assert.NoError(t, validateApplyRequest(validTarget(), validProfile()))
}

func TestValidateApplyRequestRejectsMissingURL(t *testing.T) {
	target := validTarget()
	target.URL = "  "
	err := validateApplyRequest(target, validProfile())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "target.url")
}

func TestValidateApplyRequestRejectsRelativeURL(t *testing.T) {
	target := validTarget()
	target.URL = "jobs.lever.co/acme/abc"
	assert.Error(t, validateApplyRequest(target, validProfile()))
}

func TestValidateApplyRequestRejectsMissingEmail(t *testing.T) {
	profile := validProfile()
	profile.Email = ""
	err := validateApplyRequest(validTarget(), profile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "profile.email")
}

func TestValidateApplyRequestRejectsMissingName(t *testing.T) {
	profile := validProfile()
	profile.FullName = ""
	profile.FirstName = ""
	assert.Error(t, validateApplyRequest(validTarget(), profile))
}

func TestValidateApplyRequestAcceptsFirstNameOnly(t *testing.T) {
	profile := validProfile()
	profile.FullName = ""
	profile.FirstName = "Jordan"
	assert.NoError(t, validateApplyRequest(validTarget(), profile))
}
