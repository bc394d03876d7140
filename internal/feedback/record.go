package feedback

import (
	"strconv"
	"strings"
	"time"
)

// Column names a field of the survey schema as it appears in the file header.
type Column string

const (
	ColID                  Column = "ID"
	ColPositives           Column = "Comment_Positives"
	ColNegatives           Column = "Comment_Negatives"
	ColAdvice              Column = "Advice_To_Mgmt"
	ColOverall             Column = "Overall_Ratings"
	ColWorkBalance         Column = "Work_Balance_Stars"
	ColCultureValues       Column = "Culture_Values_Stars"
	ColCareerOpportunities Column = "Career_Opportunities_Stars"
	ColCompBenefit         Column = "Comp_Benefit_Stars"
	ColSeniorManagement    Column = "Senior_Management_Stars"
	ColEngagement          Column = "Employee_Engagement_Activities"
	ColTenure              Column = "Employee_Tenure"
	ColLocation            Column = "Location"
	ColFeedbackDate        Column = "Feedback_Date"
	ColCareerGrowth        Column = "Career_Growth_Opportunities_Stars"
	ColWellness            Column = "Wellness_Programs_Satisfaction"
	ColRemoteWork          Column = "Remote_Work_Satisfaction"
)

// Schema lists all 17 columns in canonical order.
var Schema = []Column{
	ColID, ColPositives, ColNegatives, ColAdvice,
	ColOverall, ColWorkBalance, ColCultureValues, ColCareerOpportunities,
	ColCompBenefit, ColSeniorManagement, ColEngagement, ColTenure,
	ColLocation, ColFeedbackDate, ColCareerGrowth, ColWellness, ColRemoteWork,
}

// RatingColumns are the satisfaction scores used by the correlation,
// group-by and weekly views.
var RatingColumns = []Column{
	ColOverall, ColWorkBalance, ColCultureValues,
	ColCareerOpportunities, ColCompBenefit, ColSeniorManagement,
	ColCareerGrowth, ColWellness, ColRemoteWork,
}

// NumericColumns are the distribution columns (ratings plus tenure), in the
// order the histograms are laid out.
var NumericColumns = []Column{
	ColOverall, ColWorkBalance, ColCultureValues,
	ColCareerOpportunities, ColCompBenefit, ColSeniorManagement,
	ColTenure, ColCareerGrowth, ColWellness, ColRemoteWork,
}

// CategoricalColumns are the low-cardinality label columns.
var CategoricalColumns = []Column{ColEngagement, ColLocation}

// TextColumns are the free-text comment columns.
var TextColumns = []Column{ColPositives, ColNegatives, ColAdvice}

// Record is one employee survey response. Tags drive header mapping (csv)
// and range checks (validate).
type Record struct {
	ID                       int       `csv:"ID" validate:"gte=0"`
	CommentPositives         string    `csv:"Comment_Positives" validate:"required"`
	CommentNegatives         string    `csv:"Comment_Negatives" validate:"required"`
	AdviceToMgmt             string    `csv:"Advice_To_Mgmt" validate:"required"`
	OverallRatings           float64   `csv:"Overall_Ratings" validate:"gte=1,lte=5,halfstep"`
	WorkBalanceStars         float64   `csv:"Work_Balance_Stars" validate:"gte=1,lte=5,halfstep"`
	CultureValuesStars       float64   `csv:"Culture_Values_Stars" validate:"gte=2,lte=5,halfstep"`
	CareerOpportunitiesStars float64   `csv:"Career_Opportunities_Stars" validate:"gte=2,lte=5,halfstep"`
	CompBenefitStars         float64   `csv:"Comp_Benefit_Stars" validate:"gte=1,lte=5,halfstep"`
	SeniorManagementStars    float64   `csv:"Senior_Management_Stars" validate:"gte=1,lte=5,halfstep"`
	Engagement               string    `csv:"Employee_Engagement_Activities" validate:"oneof=Yes No"`
	Tenure                   int       `csv:"Employee_Tenure" validate:"gte=0"`
	Location                 string    `csv:"Location" validate:"required"`
	FeedbackDate             time.Time `csv:"Feedback_Date"`
	CareerGrowthStars        float64   `csv:"Career_Growth_Opportunities_Stars" validate:"gte=1,lte=5,halfstep"`
	WellnessSatisfaction     float64   `csv:"Wellness_Programs_Satisfaction" validate:"gte=1,lte=5,halfstep"`
	RemoteWorkSatisfaction   float64   `csv:"Remote_Work_Satisfaction" validate:"gte=1,lte=5,halfstep"`
}

// Numeric returns the value of a numeric column. ok is false for text,
// categorical and date columns.
func (r Record) Numeric(c Column) (v float64, ok bool) {
	switch c {
	case ColID:
		return float64(r.ID), true
	case ColOverall:
		return r.OverallRatings, true
	case ColWorkBalance:
		return r.WorkBalanceStars, true
	case ColCultureValues:
		return r.CultureValuesStars, true
	case ColCareerOpportunities:
		return r.CareerOpportunitiesStars, true
	case ColCompBenefit:
		return r.CompBenefitStars, true
	case ColSeniorManagement:
		return r.SeniorManagementStars, true
	case ColTenure:
		return float64(r.Tenure), true
	case ColCareerGrowth:
		return r.CareerGrowthStars, true
	case ColWellness:
		return r.WellnessSatisfaction, true
	case ColRemoteWork:
		return r.RemoteWorkSatisfaction, true
	}
	return 0, false
}

// Text returns the value of a free-text column.
func (r Record) Text(c Column) (string, bool) {
	switch c {
	case ColPositives:
		return r.CommentPositives, true
	case ColNegatives:
		return r.CommentNegatives, true
	case ColAdvice:
		return r.AdviceToMgmt, true
	}
	return "", false
}

// Label returns a grouping label for categorical columns and for tenure,
// which is discrete and used as a group key.
func (r Record) Label(c Column) (string, bool) {
	switch c {
	case ColEngagement:
		return r.Engagement, true
	case ColLocation:
		return r.Location, true
	case ColTenure:
		return strconv.Itoa(r.Tenure), true
	}
	return "", false
}

// IsNumeric reports whether c can be read with Numeric.
func IsNumeric(c Column) bool {
	_, ok := Record{}.Numeric(c)
	return ok
}

// IsText reports whether c is a free-text column.
func IsText(c Column) bool {
	_, ok := Record{}.Text(c)
	return ok
}

// IsGroupable reports whether c can be used as a group or cross-tab key.
func IsGroupable(c Column) bool {
	_, ok := Record{}.Label(c)
	return ok
}

// LookupColumn resolves a header or user-supplied name to a schema column,
// ignoring case and surrounding space.
func LookupColumn(name string) (Column, bool) {
	n := strings.TrimSpace(name)
	for _, c := range Schema {
		if strings.EqualFold(string(c), n) {
			return c, true
		}
	}
	return "", false
}
