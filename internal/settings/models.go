package settings

// Well-known settings keys. The store itself is a flat string mapping; these
// constants and their defaults are the documented surface.
const (
	KeyConsentText         = "consentText"
	KeyRetentionDays       = "retentionDays"
	KeyNotificationTime    = "notificationTime"
	KeyEmailEnabled        = "emailEnabled"
	KeyEmailRecipient      = "emailRecipient"
	KeyEmailSendTime       = "emailSendTime"
	KeyEmailIncludeDetails = "emailIncludeDetails"
)

// Defaults apply for any key that has never been written.
var Defaults = map[string]string{
	KeyConsentText: "I consent to the collection of my personal data for " +
		"visitor management purposes. Data is retained according to the " +
		"facility's retention policy and is not shared with third parties.",
	KeyRetentionDays:       "90",
	KeyNotificationTime:    "18:00",
	KeyEmailEnabled:        "false",
	KeyEmailRecipient:      "",
	KeyEmailSendTime:       "18:00",
	KeyEmailIncludeDetails: "false",
}
