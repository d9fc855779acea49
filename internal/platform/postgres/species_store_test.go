package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/flora-api/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestMarshalColumnsAbsentLocaleEncodesNull(t *testing.T) {
	rec, err := domain.NewSpeciesRecord("Rosa gallica")
	require.NoError(t, err)
	rec.SetDetail(domain.LocaleFR, &domain.DetailSheet{CommonName: strPtr("rosier de France")})

	detailsFR, detailsEN, images, err := marshalColumns(rec)
	require.NoError(t, err)

	assert.NotEmpty(t, detailsFR)
	assert.Nil(t, detailsEN, "absent locale must encode as SQL NULL for the COALESCE merge")
	assert.Equal(t, "[]", string(images), "empty image list encodes as an empty JSON array, not NULL")
}

func TestMarshalColumnsRoundTripsThroughAttachSheet(t *testing.T) {
	rec, err := domain.NewSpeciesRecord("Rosa gallica")
	require.NoError(t, err)
	rec.SetDetail(domain.LocaleEN, &domain.DetailSheet{
		CommonName: strPtr("French rose"),
		Advice:     []string{"water weekly", "full sun"},
	})
	rec.SetImages([]string{"https://img.example/a.jpg"})

	_, detailsEN, _, err := marshalColumns(rec)
	require.NoError(t, err)

	decoded := &domain.SpeciesRecord{Details: map[domain.Locale]*domain.DetailSheet{}}
	require.NoError(t, attachSheet(decoded, domain.LocaleEN, detailsEN))

	sheet := decoded.Detail(domain.LocaleEN)
	require.NotNil(t, sheet)
	assert.Equal(t, "French rose", *sheet.CommonName)
	assert.Equal(t, []string{"water weekly", "full sun"}, sheet.Advice)
	assert.Nil(t, sheet.Watering)
}

func TestAttachSheetSkipsNullColumn(t *testing.T) {
	decoded := &domain.SpeciesRecord{Details: map[domain.Locale]*domain.DetailSheet{}}
	require.NoError(t, attachSheet(decoded, domain.LocaleFR, nil))
	assert.Nil(t, decoded.Detail(domain.LocaleFR))
}

func TestAttachSheetReportsMalformedColumn(t *testing.T) {
	decoded := &domain.SpeciesRecord{Details: map[domain.Locale]*domain.DetailSheet{}}
	assert.Error(t, attachSheet(decoded, domain.LocaleFR, []byte("{not json")))
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode}
	assert.True(t, isUniqueViolation(pgErr))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", pgErr)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("some other error")))
}
