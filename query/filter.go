package query

import (
	"fmt"
	"math"
	"strings"
)

// abs returns the absolute value of a float64
func abs(x float64) float64 {
	return math.Abs(x)
}

// compare compares two values using the given operator
func compare(left interface{}, operator TokenType, right interface{}) (bool, error) {
	// Handle nil values
	if left == nil || right == nil {
		if operator == TokenEqual {
			return left == right, nil
		}
		if operator == TokenNotEqual {
			return left != right, nil
		}
		return false, nil
	}

	// Try numeric comparison
	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)

	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, operator, rightNum), nil
	}

	// Try string comparison
	leftStr, leftIsStr := toString(left)
	rightStr, rightIsStr := toString(right)

	if leftIsStr && rightIsStr {
		return compareStrings(leftStr, operator, rightStr), nil
	}

	// Try boolean comparison
	leftBool, leftIsBool := toBool(left)
	rightBool, rightIsBool := toBool(right)

	if leftIsBool && rightIsBool {
		return compareBools(leftBool, operator, rightBool), nil
	}

	// Type mismatch
	return false, fmt.Errorf("cannot compare %T with %T", left, right)
}

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToFloat64 converts a value to float64 if possible. It recognizes all
// integer and float widths.
func ToFloat64(v interface{}) (float64, bool) {
	return toFloat64(v)
}

// toString converts a value to string if possible
func toString(v interface{}) (string, bool) {
	if str, ok := v.(string); ok {
		return str, true
	}
	return "", false
}

// toBool converts a value to bool if possible
func toBool(v interface{}) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	return false, false
}

// compareNumbers compares two numbers
func compareNumbers(left float64, operator TokenType, right float64) bool {
	const epsilon = 1e-9 // Use small epsilon for floating point comparison
	switch operator {
	case TokenEqual:
		// Use relative epsilon for large numbers, absolute for small
		diff := abs(left - right)
		maxAbs := max(abs(left), abs(right))
		threshold := epsilon * max(1.0, maxAbs)
		return diff < threshold
	case TokenNotEqual:
		diff := abs(left - right)
		maxAbs := max(abs(left), abs(right))
		threshold := epsilon * max(1.0, maxAbs)
		return diff >= threshold
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareBools compares two booleans
func compareBools(left bool, operator TokenType, right bool) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	default:
		return false
	}
}

// CompareValues compares two values for ordering and returns:
//
//	-1 if a < b
//	 0 if a == b
//	+1 if a > b
//
// Nil sorts before everything else. Mismatched types compare as equal.
func CompareValues(a, b interface{}) int {
	// Handle nil values
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	// Try numeric comparison
	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		if aNum < bNum {
			return -1
		}
		if aNum > bNum {
			return 1
		}
		return 0
	}

	// Try string comparison
	aStr, aIsStr := toString(a)
	bStr, bIsStr := toString(b)
	if aIsStr && bIsStr {
		if aStr < bStr {
			return -1
		}
		if aStr > bStr {
			return 1
		}
		return 0
	}

	// Try boolean comparison
	aBool, aIsBool := toBool(a)
	bBool, bIsBool := toBool(b)
	if aIsBool && bIsBool {
		if !aBool && bBool {
			return -1 // false < true
		}
		if aBool && !bBool {
			return 1 // true > false
		}
		return 0
	}

	// Type mismatch or unsupported types - treat as equal
	return 0
}

// matchLikePattern matches a string against a SQL LIKE pattern
// % matches any sequence of characters
// _ matches any single character
func matchLikePattern(str, pattern string) bool {
	// Convert pattern to segments split by %
	segments := strings.Split(pattern, "%")

	// Track position in the string
	pos := 0

	for i, segment := range segments {
		if segment == "" {
			// Empty segment means % was at start/end or consecutive %%
			continue
		}

		// Match the segment (handling _ wildcards)
		matchPos := findSegmentMatch(str[pos:], segment)
		if matchPos == -1 {
			return false
		}

		// For the first segment, it must match at the start (unless pattern starts with %)
		if i == 0 && !strings.HasPrefix(pattern, "%") && matchPos != 0 {
			return false
		}

		pos += matchPos + len(segment)
	}

	// For the last segment, it must match at the end (unless pattern ends with %)
	if !strings.HasSuffix(pattern, "%") && pos != len(str) {
		return false
	}

	return true
}

// findSegmentMatch finds the position where a segment matches in the string
// Returns -1 if no match found
// Handles _ wildcard matching any single character
func findSegmentMatch(str, segment string) int {
	if len(segment) == 0 {
		return 0
	}

	// If no _ wildcards, use simple string search
	if !strings.Contains(segment, "_") {
		idx := strings.Index(str, segment)
		return idx
	}

	// Handle _ wildcards
	for i := 0; i <= len(str)-len(segment); i++ {
		match := true
		for j := 0; j < len(segment); j++ {
			if segment[j] != '_' && str[i+j] != segment[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}

	return -1
}
