package handler

// V1Prefix and APIV1Prefix both serve API v1; clients of the old gateway still call /api/v1.
const (
	V1Prefix    = "/v1"
	APIV1Prefix = "/api/v1"
)
