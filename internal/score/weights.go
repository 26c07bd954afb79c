package score

// Signal weights
const (
	WeightShortenerExpanded   = 8
	WeightExcessiveSubdomains = 7
	WeightSuspiciousChars     = 5
	WeightLeetSimilarity      = 6
	WeightListedFeed          = 35 // OpenPhish and PhishTank each
	WeightListedSafeBrowsing  = 30
	WeightDomainVeryNew       = 15
	WeightDomainYoung         = 8
	WeightWhoisUnavailable    = 3
	WeightDynamicDNS          = 10
	WeightCertHostMismatch    = 18
	WeightCertExpired         = 15
	WeightCertNearExpiry      = 4
	WeightCertUnreadable      = 2
	WeightNoHTTPS             = 8
	WeightMetaRefresh         = 5
	WeightSensitiveForm       = 16
	WeightLoginForm           = 10
	WeightPressureKeywords    = 6
	WeightCrossDomainForm     = 10
	WeightAntiInspection      = 5 // per trick
	WeightPageFetchFailed     = 5
	WeightTyposquatting       = 14
)

// Thresholds
const (
	MaxScore            = 100
	SuspiciousThreshold = 35
	MaliciousThreshold  = 65

	VeryNewDays    = 30
	YoungDays      = 180
	NearExpiryDays = 14

	// maxKeywordsInDetail caps the keyword list echoed in a signal detail
	maxKeywordsInDetail = 8
)
