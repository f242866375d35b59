package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxUploadSize caps spreadsheet uploads
const MaxUploadSize = 10 << 20

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, models.Response{Success: true, Data: data, Message: message})
}

func respondPage[T any](c *gin.Context, page models.Page[T], message string) {
	c.JSON(http.StatusOK, models.PaginatedResponse{
		Response: models.Response{Success: true, Data: page.Items, Message: message},
		Total:    page.Total,
		Next:     page.Next,
		Prev:     page.Prev,
	})
}

// fail hands err to the error middleware
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// bindJSON binds the request body, reporting malformed JSON as a 400
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fail(c, verrs)
	} else {
		fail(c, apperrors.Wrap(err, http.StatusBadRequest, "invalid request body"))
	}
	return false
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.BadRequest(key + " must be a number")
	}
	return n, nil
}

func queryID(c *gin.Context, key string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.BadRequest("invalid " + key + " id")
	}
	return id, nil
}

func queryDate(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.BadRequest(key + " must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}

// parseListQuery reads the filters shared by the transaction and prelisting lists
func parseListQuery(c *gin.Context) (models.ListQuery, error) {
	q := models.ListQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Course: strings.TrimSpace(c.Query("course")),
		Status: strings.TrimSpace(c.Query("status")),
		Sort:   strings.TrimSpace(c.Query("sort")),
	}
	var err error
	if q.Category, err = queryID(c, "category"); err != nil {
		return q, err
	}
	if q.Organization, err = queryID(c, "organization"); err != nil {
		return q, err
	}
	if q.YearLevel, err = queryInt(c, "yearLevel"); err != nil {
		return q, err
	}
	if q.From, err = queryDate(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = queryDate(c, "to"); err != nil {
		return q, err
	}
	if q.Page, err = queryInt(c, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return q, err
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, apperrors.BadRequest("to must not be before from")
	}
	return q, nil
}

// readUpload parses the multipart "file" field as a spreadsheet
func readUpload(c *gin.Context) ([][]string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.Newf(http.StatusRequestEntityTooLarge, "file exceeds %d MB", MaxUploadSize>>20)
		}
		return nil, apperrors.Wrap(err, http.StatusBadRequest, "a file is required")
	}
	defer file.Close()

	rows, err := utils.ReadSpreadsheet(file, header.Filename)
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedFormat) {
			return nil, apperrors.Wrap(err, http.StatusBadRequest, "only .csv and .xlsx files are supported")
		}
		return nil, apperrors.Wrap(err, http.StatusBadRequest, "could not read the file")
	}
	return rows, nil
}
