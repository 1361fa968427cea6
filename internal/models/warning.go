package models

// EtwsWarningType is the ETWS warning type code.
type EtwsWarningType int

const (
	EtwsWarningUnknown              EtwsWarningType = -1
	EtwsWarningEarthquake           EtwsWarningType = 0
	EtwsWarningTsunami              EtwsWarningType = 1
	EtwsWarningEarthquakeAndTsunami EtwsWarningType = 2
	EtwsWarningTest                 EtwsWarningType = 3
	EtwsWarningOther                EtwsWarningType = 4
)

var etwsWarningNames = map[EtwsWarningType]string{
	EtwsWarningEarthquake:           "earthquake",
	EtwsWarningTsunami:              "tsunami",
	EtwsWarningEarthquakeAndTsunami: "earthquake_and_tsunami",
	EtwsWarningTest:                 "test",
	EtwsWarningOther:                "other",
}

func (t EtwsWarningType) String() string {
	if name, ok := etwsWarningNames[t]; ok {
		return name
	}
	return "unknown"
}

// CmasMessageClass is the CMAS alert class.
type CmasMessageClass int

const (
	CmasClassUnknown         CmasMessageClass = -1
	CmasClassPresidential    CmasMessageClass = 0
	CmasClassExtremeThreat   CmasMessageClass = 1
	CmasClassSevereThreat    CmasMessageClass = 2
	CmasClassChildAbduction  CmasMessageClass = 3
	CmasClassMonthlyTest     CmasMessageClass = 4
	CmasClassExercise        CmasMessageClass = 5
	CmasClassOperatorDefined CmasMessageClass = 6
)

var cmasClassNames = map[CmasMessageClass]string{
	CmasClassPresidential:    "presidential",
	CmasClassExtremeThreat:   "extreme_threat",
	CmasClassSevereThreat:    "severe_threat",
	CmasClassChildAbduction:  "child_abduction",
	CmasClassMonthlyTest:     "required_monthly_test",
	CmasClassExercise:        "exercise",
	CmasClassOperatorDefined: "operator_defined",
}

func (c CmasMessageClass) String() string {
	if name, ok := cmasClassNames[c]; ok {
		return name
	}
	return "unknown"
}

// CmasCategory is the CAP event category.
type CmasCategory int

const (
	CmasCategoryUnknown   CmasCategory = -1
	CmasCategoryGeo       CmasCategory = 0
	CmasCategoryMet       CmasCategory = 1
	CmasCategorySafety    CmasCategory = 2
	CmasCategorySecurity  CmasCategory = 3
	CmasCategoryRescue    CmasCategory = 4
	CmasCategoryFire      CmasCategory = 5
	CmasCategoryHealth    CmasCategory = 6
	CmasCategoryEnv       CmasCategory = 7
	CmasCategoryTransport CmasCategory = 8
	CmasCategoryInfra     CmasCategory = 9
	CmasCategoryCBRNE     CmasCategory = 10
	CmasCategoryOther     CmasCategory = 11
)

// CmasResponseType is the CAP recommended response.
type CmasResponseType int

const (
	CmasResponseUnknown  CmasResponseType = -1
	CmasResponseShelter  CmasResponseType = 0
	CmasResponseEvacuate CmasResponseType = 1
	CmasResponsePrepare  CmasResponseType = 2
	CmasResponseExecute  CmasResponseType = 3
	CmasResponseMonitor  CmasResponseType = 4
	CmasResponseAvoid    CmasResponseType = 5
	CmasResponseAssess   CmasResponseType = 6
	CmasResponseNone     CmasResponseType = 7
)

// CmasSeverity is the CAP severity.
type CmasSeverity int

const (
	CmasSeverityUnknown CmasSeverity = -1
	CmasSeverityExtreme CmasSeverity = 0
	CmasSeveritySevere  CmasSeverity = 1
)

// CmasUrgency is the CAP urgency.
type CmasUrgency int

const (
	CmasUrgencyUnknown   CmasUrgency = -1
	CmasUrgencyImmediate CmasUrgency = 0
	CmasUrgencyExpected  CmasUrgency = 1
)

// CmasCertainty is the CAP certainty.
type CmasCertainty int

const (
	CmasCertaintyUnknown  CmasCertainty = -1
	CmasCertaintyObserved CmasCertainty = 0
	CmasCertaintyLikely   CmasCertainty = 1
)
