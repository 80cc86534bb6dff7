package criteria

// Equals matches records whose field equals value.
// Case sensitivity depends on the server's database.
func Equals(field string, value any) *Expression {
	return newExpression(field, OpEquals, value)
}

// EqualsIgnoreCase matches records whose field equals value, ignoring case
func EqualsIgnoreCase(field string, value any) *Expression {
	return newExpression(field, OpEqualsIgnoreCase, value)
}

// NotEquals matches records whose field differs from value
func NotEquals(field string, value any) *Expression {
	return newExpression(field, OpNotEqual, value)
}

// IsNull matches records whose field is empty
func IsNull(field string) *Expression {
	return newExpression(field, OpIsNull, nil)
}

// IsNotNull matches records whose field is set
func IsNotNull(field string) *Expression {
	return newExpression(field, OpNotNull, nil)
}

// StartsWith matches records whose field starts with value
func StartsWith(field string, value any) *Expression {
	return newExpression(field, OpStartsWith, value)
}

// EndsWith matches records whose field ends with value
func EndsWith(field string, value any) *Expression {
	return newExpression(field, OpEndsWith, value)
}

// Contains matches records whose field contains value
func Contains(field string, value any) *Expression {
	return newExpression(field, OpContains, value)
}

// BetweenInclusive matches records whose field lies in [start, end].
// Both bounds are always sent.
func BetweenInclusive(field string, start, end any) *Expression {
	return &Expression{
		field:    field,
		operator: OpBetweenInclusive,
		start:    start,
		end:      end,
		between:  true,
	}
}

// IsOneOf matches records whose field is one of values
func IsOneOf(field string, values any) *Expression {
	return newExpression(field, OpInSet, values)
}

// IsNotOneOf matches records whose field is none of values
func IsNotOneOf(field string, values any) *Expression {
	return newExpression(field, OpNotInSet, values)
}

// LessThan matches records whose field is strictly less than value
func LessThan(field string, value any) *Expression {
	return newExpression(field, OpLessThan, value)
}

// GreaterThan matches records whose field is strictly greater than value
func GreaterThan(field string, value any) *Expression {
	return newExpression(field, OpGreaterThan, value)
}

// LessThanOrEqual matches records whose field is at most value
func LessThanOrEqual(field string, value any) *Expression {
	return newExpression(field, OpLessOrEqual, value)
}

// GreaterThanOrEqual matches records whose field is at least value
func GreaterThanOrEqual(field string, value any) *Expression {
	return newExpression(field, OpGreaterOrEqual, value)
}

// IsNA matches records for which the custom field is marked not applicable
func IsNA(field string) *Expression {
	return newExpression(isNaField, OpEquals, field)
}

// Conjunction returns an empty AND junction
func Conjunction() *Junction {
	return &Junction{operator: And}
}

// Disjunction returns an empty OR junction
func Disjunction() *Junction {
	return &Junction{operator: Or}
}

// IsNot inverts a criterion
func IsNot(criterion Criterion) *Junction {
	return (&Junction{operator: Not}).Add(criterion)
}
