package testhelpers

import (
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toM converts a document or filter into its bson.M form so typed values such as
// models.EventStatus compare equal to the strings they are stored as
func toM(v interface{}) bson.M {
	if v == nil {
		return bson.M{}
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

// clone deep copies src into dst through bson
func clone(src, dst interface{}) {
	raw, err := bson.Marshal(src)
	if err != nil {
		panic(err)
	}
	if err := bson.Unmarshal(raw, dst); err != nil {
		panic(err)
	}
}

// Matches reports whether doc satisfies a mongo filter. Top level fields with
// equality, $eq, $ne, $in, $nin, $lt, $lte, $gt, $gte, $exists and $or / $and are
// supported. An array field matches when any element does.
func Matches(doc, filter interface{}) bool {
	return matchDoc(toM(doc), toM(filter))
}

func matchDoc(doc, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$or":
			clauses, _ := cond.(bson.A)
			matched := false
			for _, c := range clauses {
				if m, ok := c.(bson.M); ok && matchDoc(doc, m) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "$and":
			clauses, _ := cond.(bson.A)
			for _, c := range clauses {
				if m, ok := c.(bson.M); !ok || !matchDoc(doc, m) {
					return false
				}
			}
		default:
			val, present := doc[key]
			if ops, ok := cond.(bson.M); ok && isOperatorDoc(ops) {
				for op, arg := range ops {
					if !applyOperator(op, val, present, arg) {
						return false
					}
				}
				continue
			}
			if !fieldEquals(val, cond) {
				return false
			}
		}
	}
	return true
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func applyOperator(op string, val interface{}, present bool, arg interface{}) bool {
	switch op {
	case "$eq":
		return fieldEquals(val, arg)
	case "$ne":
		return !fieldEquals(val, arg)
	case "$in":
		list, _ := arg.(bson.A)
		for _, a := range list {
			if fieldEquals(val, a) {
				return true
			}
		}
		return false
	case "$nin":
		list, _ := arg.(bson.A)
		for _, a := range list {
			if fieldEquals(val, a) {
				return false
			}
		}
		return true
	case "$exists":
		want, _ := arg.(bool)
		return present == want
	case "$lt", "$lte", "$gt", "$gte":
		c, ok := compare(val, arg)
		if !ok {
			return false
		}
		switch op {
		case "$lt":
			return c < 0
		case "$lte":
			return c <= 0
		case "$gt":
			return c > 0
		default:
			return c >= 0
		}
	}
	panic("unsupported filter operator " + op)
}

func fieldEquals(val, want interface{}) bool {
	if arr, ok := val.(bson.A); ok {
		if _, wantArr := want.(bson.A); !wantArr {
			for _, v := range arr {
				if fieldEquals(v, want) {
					return true
				}
			}
			return false
		}
	}
	if c, ok := compare(val, want); ok {
		return c == 0
	}
	return reflect.DeepEqual(val, want)
}

func compare(a, b interface{}) (int, bool) {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case primitive.DateTime:
		bv, ok := b.(primitive.DateTime)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case primitive.ObjectID:
		bv, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return strings.Compare(av.Hex(), bv.Hex()), true
	}
	return 0, false
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// applyUpdate applies $set and $unset to a document and decodes the result into out
func applyUpdate(doc interface{}, update interface{}, out interface{}) {
	m := toM(doc)
	u := toM(update)
	if set, ok := u["$set"].(bson.M); ok {
		for k, v := range set {
			m[k] = v
		}
	}
	if unset, ok := u["$unset"].(bson.M); ok {
		for k := range unset {
			delete(m, k)
		}
	}
	clone(m, out)
}
