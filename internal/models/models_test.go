package models_test

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMoneyBSONStoresDecimal128(t *testing.T) {
	doc := struct {
		Amount models.Money `bson:"amount"`
	}{models.MustMoney("150.50")}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	value := bson.Raw(raw).Lookup("amount")
	assert.Equal(t, bsontype.Decimal128, value.Type)

	var out struct {
		Amount models.Money `bson:"amount"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.True(t, out.Amount.Equal(doc.Amount.Decimal))
}

func TestMoneyBSONAcceptsOtherNumbers(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"a": int32(20), "b": 12.5, "c": "3.10"})
	require.NoError(t, err)

	var out struct {
		A models.Money `bson:"a"`
		B models.Money `bson:"b"`
		C models.Money `bson:"c"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, "20", out.A.String())
	assert.Equal(t, "12.5", out.B.String())
	assert.Equal(t, "3.1", out.C.String())

	bad, err := bson.Marshal(bson.M{"a": primitive.NewObjectID()})
	require.NoError(t, err)
	var fail struct {
		A models.Money `bson:"a"`
	}
	assert.Error(t, bson.Unmarshal(bad, &fail))
}

func TestMoneyJSONIsNumber(t *testing.T) {
	out, err := json.Marshal(map[string]models.Money{"fee": models.MustMoney("100.25")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fee": 100.25}`, string(out))

	sum := models.MustMoney("0.1").Add(models.MustMoney("0.2"))
	assert.Equal(t, "0.3", sum.String())
	assert.Equal(t, "-0.1", models.MustMoney("0.2").Sub(models.MustMoney("0.3")).String())
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	first := models.Paginate(items, 1, 10)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, first.Items)
	assert.Equal(t, 25, first.Total)
	require.NotNil(t, first.Next)
	assert.Equal(t, 2, *first.Next)
	assert.Nil(t, first.Prev)

	last := models.Paginate(items, 3, 10)
	assert.Len(t, last.Items, 5)
	assert.Nil(t, last.Next)
	require.NotNil(t, last.Prev)
	assert.Equal(t, 2, *last.Prev)

	t.Run("missing limit falls back to the default", func(t *testing.T) {
		p := models.Paginate(items, 0, 0)
		assert.Equal(t, models.DefaultPageLimit, p.Limit)
		assert.Equal(t, 1, p.Page)
	})

	t.Run("oversized limit is capped", func(t *testing.T) {
		p := models.Paginate(items, 1, 500)
		assert.Equal(t, models.MaxPageLimit, p.Limit)
		assert.Len(t, p.Items, len(items))
	})

	t.Run("page past the end is empty and points back to the last page", func(t *testing.T) {
		p := models.Paginate(items, 9, 10)
		assert.Empty(t, p.Items)
		assert.NotNil(t, p.Items)
		assert.Nil(t, p.Next)
		require.NotNil(t, p.Prev)
		assert.Equal(t, 3, *p.Prev)
	})

	t.Run("empty set", func(t *testing.T) {
		p := models.Paginate([]string(nil), 1, 10)
		assert.Equal(t, 0, p.Total)
		assert.NotNil(t, p.Items)
		assert.Nil(t, p.Next)
		assert.Nil(t, p.Prev)
	})
}

func TestSchoolTerm(t *testing.T) {
	term := models.SchoolTerm{Semester: 2, Year: 2024}
	assert.Equal(t, "22024", term.Key())
	assert.Equal(t, "semester 2 of 2024-2025", term.String())
	assert.NoError(t, term.Validate())

	assert.Error(t, models.SchoolTerm{Semester: 0, Year: 2024}.Validate())
	assert.Error(t, models.SchoolTerm{Semester: 4, Year: 2024}.Validate())
	assert.Error(t, models.SchoolTerm{Semester: 1, Year: 1999}.Validate())
}

func TestActorPermissions(t *testing.T) {
	org := primitive.NewObjectID()
	officer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleOfficer, Organization: &org}
	role := &models.Role{Name: "importer", Permissions: []models.Permission{models.PermStudentImport}}

	actor := models.NewActor(officer, []*models.Role{role})
	assert.True(t, actor.Can(models.PermTransactionWrite))
	assert.True(t, actor.Can(models.PermStudentImport), "RBAC roles extend the base role")
	assert.False(t, actor.Can(models.PermTransactionWrite, models.PermUserWrite))
	assert.Equal(t, &org, actor.ScopedTo())

	admin := models.NewActor(&models.User{Role: models.RoleAdmin, Organization: &org}, nil)
	assert.Nil(t, admin.ScopedTo(), "only officers are scoped")
	assert.False(t, admin.Can(models.PermRoleWrite))

	root := models.NewActor(&models.User{Role: models.RoleSuperAdmin}, nil)
	assert.Len(t, root.PermissionList(), len(models.AllPermissions))
	perms := root.PermissionList()
	assert.True(t, sort.SliceIsSorted(perms, func(i, j int) bool { return perms[i] < perms[j] }))

	orphan := models.NewActor(&models.User{Role: models.RoleOfficer}, nil)
	require.NotNil(t, orphan.ScopedTo(), "an officer without an organization is still scoped")
	assert.True(t, orphan.ScopedTo().IsZero())

	var nobody *models.Actor
	assert.False(t, nobody.Can(models.PermStudentRead))
	assert.Nil(t, nobody.ScopedTo())
}
