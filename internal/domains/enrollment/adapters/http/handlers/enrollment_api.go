package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/http/mapper"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/application/types"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
	apierrors "github.com/Apurer/lecturer-recruitment/internal/shared/errors"
)

const (
	// HeaderUserID identifies the coordinator recording an event. It is trusted as is.
	HeaderUserID = "X-User-ID"
	// HeaderIdempotencyKey makes form submissions safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"
)

// EnrollmentAPI wires HTTP transport with the enrollment application port.
type EnrollmentAPI struct {
	service   application.Port
	responder *apierrors.ChainedResponder
}

// NewEnrollmentAPI creates an EnrollmentAPI backed by the provided service.
func NewEnrollmentAPI(service application.Port) *EnrollmentAPI {
	return &EnrollmentAPI{
		service:   service,
		responder: apierrors.NewChainedResponder("", ProblemFromError),
	}
}

// Register mounts the enrollment routes under group.
func (api *EnrollmentAPI) Register(group gin.IRouter) {
	enrollments := group.Group("/enrollments")
	enrollments.POST("", api.SubmitRecruitmentForm)
	enrollments.GET("", api.ListEnrollments)
	enrollments.GET("/:enrollmentId", api.GetEnrollment)
	enrollments.GET("/:enrollmentId/history", api.GetHistory)
	enrollments.POST("/:enrollmentId/invitation/accept", api.AcceptTrainingInvitation)
	enrollments.POST("/:enrollmentId/invitation/refuse", api.RefuseTrainingInvitation)
	enrollments.POST("/:enrollmentId/training-results", api.RecordTrainingResults)
	enrollments.POST("/:enrollmentId/resignation", api.RecordResignation)
	enrollments.POST("/:enrollmentId/contacts", api.RecordContact)
}

// Post /v1/enrollments
// Submits a recruitment form
func (api *EnrollmentAPI) SubmitRecruitmentForm(c *gin.Context) {
	var payload mapper.RecruitmentForm
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	cmd, err := mapper.ToSubmitCommand(payload)
	if err != nil {
		api.responder.ValidationFailed(c, map[string]string{"enrollmentId": err.Error()})
		return
	}
	result, err := api.service.SubmitRecruitmentForm(c.Request.Context(), types.SubmitRecruitmentFormInput{
		Form:           cmd,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.Header("Location", c.Request.URL.Path+"/"+result.EnrollmentID.String())
	c.JSON(status, mapper.FromCommandResult(result))
}

// Post /v1/enrollments/:enrollmentId/invitation/accept
func (api *EnrollmentAPI) AcceptTrainingInvitation(c *gin.Context) {
	id, user, ok := api.commandTarget(c)
	if !ok {
		return
	}
	var payload mapper.AcceptInvitation
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.AcceptTrainingInvitation(c.Request.Context(), user, mapper.ToAcceptCommand(id, payload))
	api.respondCommand(c, result, err)
}

// Post /v1/enrollments/:enrollmentId/invitation/refuse
func (api *EnrollmentAPI) RefuseTrainingInvitation(c *gin.Context) {
	id, user, ok := api.commandTarget(c)
	if !ok {
		return
	}
	var payload mapper.RefuseInvitation
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.RefuseTrainingInvitation(c.Request.Context(), user, mapper.ToRefuseCommand(id, payload))
	api.respondCommand(c, result, err)
}

// Post /v1/enrollments/:enrollmentId/training-results
func (api *EnrollmentAPI) RecordTrainingResults(c *gin.Context) {
	id, user, ok := api.commandTarget(c)
	if !ok {
		return
	}
	var payload mapper.TrainingResults
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.RecordTrainingResults(c.Request.Context(), user, mapper.ToTrainingResultsCommand(id, payload))
	api.respondCommand(c, result, err)
}

// Post /v1/enrollments/:enrollmentId/resignation
func (api *EnrollmentAPI) RecordResignation(c *gin.Context) {
	id, user, ok := api.commandTarget(c)
	if !ok {
		return
	}
	var payload mapper.Resignation
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	cmd, err := mapper.ToResignationCommand(id, payload)
	if err != nil {
		api.responder.ValidationFailed(c, map[string]string{"resumeDate": err.Error()})
		return
	}
	result, err := api.service.RecordResignation(c.Request.Context(), user, cmd)
	api.respondCommand(c, result, err)
}

// Post /v1/enrollments/:enrollmentId/contacts
func (api *EnrollmentAPI) RecordContact(c *gin.Context) {
	id, user, ok := api.commandTarget(c)
	if !ok {
		return
	}
	var payload mapper.Contact
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.RecordContact(c.Request.Context(), user, mapper.ToContactCommand(id, payload))
	api.respondCommand(c, result, err)
}

// Get /v1/enrollments/:enrollmentId
func (api *EnrollmentAPI) GetEnrollment(c *gin.Context) {
	id, ok := api.enrollmentID(c)
	if !ok {
		return
	}
	view, err := api.service.GetEnrollment(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromView(*view))
}

// Get /v1/enrollments/:enrollmentId/history
func (api *EnrollmentAPI) GetHistory(c *gin.Context) {
	id, ok := api.enrollmentID(c)
	if !ok {
		return
	}
	events, err := api.service.GetHistory(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	history, err := mapper.FromHistory(events)
	if err != nil {
		api.responder.InternalError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, history)
}

// Get /v1/enrollments
// Lists enrollments with flags evaluated at request time
func (api *EnrollmentAPI) ListEnrollments(c *gin.Context) {
	filter, fieldErrors := bindFilter(c)
	if len(fieldErrors) > 0 {
		api.responder.ValidationFailed(c, fieldErrors)
		return
	}
	page, err := api.service.ListEnrollments(c.Request.Context(), filter)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromPage(page))
}

type listParams struct {
	CampaignID             *int64
	Region                 *string
	City                   *string
	Query                  *string
	HasLecturerRights      *bool
	HasResigned            *bool
	IsCurrentSubmission    *bool
	HasSignedUpForTraining *bool
	Sort                   *string
	Offset                 *int
	Limit                  *int
}

func bindFilter(c *gin.Context) (readmodel.Filter, map[string]string) {
	query := c.Request.URL.Query()
	var params listParams
	fieldErrors := map[string]string{}
	bind := func(name string, dest any) {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			fieldErrors[name] = err.Error()
		}
	}
	bind("campaignId", &params.CampaignID)
	bind("region", &params.Region)
	bind("city", &params.City)
	bind("q", &params.Query)
	bind("hasLecturerRights", &params.HasLecturerRights)
	bind("hasResigned", &params.HasResigned)
	bind("isCurrentSubmission", &params.IsCurrentSubmission)
	bind("hasSignedUpForTraining", &params.HasSignedUpForTraining)
	bind("sort", &params.Sort)
	bind("offset", &params.Offset)
	bind("limit", &params.Limit)

	filter := readmodel.Filter{
		Region:                 deref(params.Region),
		City:                   deref(params.City),
		Query:                  deref(params.Query),
		HasLecturerRights:      params.HasLecturerRights,
		HasResigned:            params.HasResigned,
		IsCurrentSubmission:    params.IsCurrentSubmission,
		HasSignedUpForTraining: params.HasSignedUpForTraining,
	}
	if params.CampaignID != nil {
		campaign := domain.CampaignID(*params.CampaignID)
		filter.CampaignID = &campaign
	}
	sort, err := readmodel.ParseSortOrder(deref(params.Sort))
	if err != nil {
		fieldErrors["sort"] = err.Error()
	}
	filter.Sort = sort
	if params.Offset != nil {
		if *params.Offset < 0 {
			fieldErrors["offset"] = "must not be negative"
		}
		filter.Offset = *params.Offset
	}
	if params.Limit != nil {
		if *params.Limit < 1 || *params.Limit > 500 {
			fieldErrors["limit"] = "must be between 1 and 500"
		}
		filter.Limit = *params.Limit
	}
	return filter, fieldErrors
}

func (api *EnrollmentAPI) respondCommand(c *gin.Context, result *types.CommandResult, err error) {
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromCommandResult(result))
}

// commandTarget resolves the path id and the recording coordinator.
func (api *EnrollmentAPI) commandTarget(c *gin.Context) (domain.EnrollmentID, domain.UserID, bool) {
	id, ok := api.enrollmentID(c)
	if !ok {
		return domain.EnrollmentID{}, 0, false
	}
	raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if raw == "" {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail(HeaderUserID+" header is required"))
		return domain.EnrollmentID{}, 0, false
	}
	user, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || user <= 0 {
		api.responder.BadRequest(c, HeaderUserID+" must be a positive integer")
		return domain.EnrollmentID{}, 0, false
	}
	return id, domain.UserID(user), true
}

func (api *EnrollmentAPI) enrollmentID(c *gin.Context) (domain.EnrollmentID, bool) {
	id, err := domain.ParseEnrollmentID(c.Param("enrollmentId"))
	if err != nil {
		api.responder.ValidationFailed(c, map[string]string{"enrollmentId": err.Error()})
		return domain.EnrollmentID{}, false
	}
	return id, true
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
