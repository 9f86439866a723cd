// Package errors_test provides table-driven unit tests for the error code
// definitions in pkg/errors/codes.go.
package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/gaussgrid/pkg/errors"
)

type codeEntry struct {
	code           errors.ErrorCode
	expectedString string
}

// allCodes enumerates every ErrorCode constant defined in codes.go together
// with its expected String() output. The table is the single source of
// truth for the tests below.
var allCodes = []codeEntry{
	// ── General ──────────────────────────────────────────────────────────
	{errors.CodeOK, "OK"},
	{errors.CodeUnknown, "UNKNOWN"},
	{errors.CodeInvalidParam, "INVALID_PARAM"},
	{errors.CodeNotFound, "NOT_FOUND"},
	{errors.CodeConflict, "CONFLICT"},
	{errors.CodeInternal, "INTERNAL_ERROR"},
	{errors.CodeNotImplemented, "NOT_IMPLEMENTED"},

	// ── Basis-evaluation domain ──────────────────────────────────────────
	{errors.CodeBasisEmpty, "BASIS_EMPTY"},
	{errors.CodeMOIndexOutOfRange, "MO_INDEX_OUT_OF_RANGE"},
	{errors.CodeDensityMatrixMissing, "DENSITY_MATRIX_MISSING"},
	{errors.CodeUnsupportedAngularType, "UNSUPPORTED_ANGULAR_TYPE"},
	{errors.CodeUnrecognizedExtension, "UNRECOGNIZED_EXTENSION"},
	{errors.CodeParserFailed, "PARSER_FAILED"},

	// ── Infrastructure ───────────────────────────────────────────────────
	{errors.CodeDBConnectionError, "DB_CONNECTION_ERROR"},
	{errors.CodeCacheUnavailable, "CACHE_UNAVAILABLE"},
	{errors.CodeMessageQueueError, "MESSAGE_QUEUE_ERROR"},
	{errors.CodeStoreQueryError, "STORE_QUERY_ERROR"},
}

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	for _, tc := range allCodes {
		tc := tc
		t.Run(tc.expectedString, func(t *testing.T) {
			t.Parallel()

			got := tc.code.String()

			assert.NotEmpty(t, got,
				"String() for code %d must not be empty", int(tc.code))
			assert.Equal(t, tc.expectedString, got,
				"String() for code %d returned unexpected value", int(tc.code))
		})
	}
}

// TestErrorCode_String_Unknown verifies that an ErrorCode value that does not
// correspond to any declared constant returns the sentinel string "UNKNOWN_CODE".
func TestErrorCode_String_Unknown(t *testing.T) {
	t.Parallel()

	unknownCodes := []errors.ErrorCode{
		errors.ErrorCode(99999),
		errors.ErrorCode(-1),
		errors.ErrorCode(1),
		errors.ErrorCode(12345),
	}

	for _, code := range unknownCodes {
		code := code
		t.Run("", func(t *testing.T) {
			t.Parallel()
			got := code.String()
			assert.NotEmpty(t, got,
				"String() must never return an empty string even for unknown codes")
			assert.Equal(t, "UNKNOWN_CODE", got,
				"String() for undeclared code %d should return UNKNOWN_CODE", int(code))
		})
	}
}

// TestErrorCode_DomainRanges validates that each error code integer value
// falls within the expected numeric range for its domain, preventing
// accidental cross-domain code collisions as the codebase grows.
func TestErrorCode_DomainRanges(t *testing.T) {
	t.Parallel()

	type entry struct {
		code errors.ErrorCode
		low  int
		high int
		name string
	}

	ranges := []entry{
		{errors.CodeOK, 0, 0, "CodeOK"},
		{errors.CodeUnknown, 10000, 10999, "CodeUnknown"},
		{errors.CodeInvalidParam, 10000, 10999, "CodeInvalidParam"},
		{errors.CodeNotFound, 10000, 10999, "CodeNotFound"},
		{errors.CodeConflict, 10000, 10999, "CodeConflict"},
		{errors.CodeInternal, 10000, 10999, "CodeInternal"},
		{errors.CodeNotImplemented, 10000, 10999, "CodeNotImplemented"},

		{errors.CodeBasisEmpty, 20000, 29999, "CodeBasisEmpty"},
		{errors.CodeMOIndexOutOfRange, 20000, 29999, "CodeMOIndexOutOfRange"},
		{errors.CodeDensityMatrixMissing, 20000, 29999, "CodeDensityMatrixMissing"},
		{errors.CodeUnsupportedAngularType, 20000, 29999, "CodeUnsupportedAngularType"},
		{errors.CodeUnrecognizedExtension, 20000, 29999, "CodeUnrecognizedExtension"},
		{errors.CodeParserFailed, 20000, 29999, "CodeParserFailed"},

		{errors.CodeDBConnectionError, 70000, 79999, "CodeDBConnectionError"},
		{errors.CodeCacheUnavailable, 70000, 79999, "CodeCacheUnavailable"},
		{errors.CodeMessageQueueError, 70000, 79999, "CodeMessageQueueError"},
		{errors.CodeStoreQueryError, 70000, 79999, "CodeStoreQueryError"},
	}

	for _, r := range ranges {
		r := r
		t.Run(r.name, func(t *testing.T) {
			t.Parallel()
			v := int(r.code)
			assert.GreaterOrEqual(t, v, r.low,
				"%s value %d is below domain lower bound %d", r.name, v, r.low)
			assert.LessOrEqual(t, v, r.high,
				"%s value %d is above domain upper bound %d", r.name, v, r.high)
		})
	}
}
