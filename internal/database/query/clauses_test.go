// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package query

import (
	"math"
	"testing"
)

func TestLimit_Floors(t *testing.T) {
	tests := []struct {
		name       string
		limit      Limit
		wantOffset int64
		wantCount  int64
		wantSQL    string
	}{
		{"first page", Page(1, 10), 0, 10, " LIMIT 0,10"},
		{"third page", Page(3, 20), 40, 20, " LIMIT 40,20"},
		{"page zero floors offset", Page(0, 10), 0, 10, " LIMIT 0,10"},
		{"huge page caps offset", Page(math.MaxInt64, 10), math.MaxInt64, 10, " LIMIT 9223372036854775807,10"},
		{"page just past overflow", Page(math.MaxInt64/10+2, 10), math.MaxInt64, 10, " LIMIT 9223372036854775807,10"},
		{"largest exact page", Page(math.MaxInt64/10+1, 10), math.MaxInt64 / 10 * 10, 10, " LIMIT 9223372036854775800,10"},
		{"negative from and zero limit", From(-5, 0), 0, 1, " LIMIT 0,1"},
		{"explicit from", From(15, 5), 15, 5, " LIMIT 15,5"},
		{"first", First(3), 0, 3, " LIMIT 0,3"},
		{"negative first", First(-2), 0, 1, " LIMIT 0,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.limit.Offset() != tt.wantOffset {
				t.Errorf("Expected offset %d, got %d", tt.wantOffset, tt.limit.Offset())
			}
			if tt.limit.Size() != tt.wantCount {
				t.Errorf("Expected count %d, got %d", tt.wantCount, tt.limit.Size())
			}
			if got := tt.limit.Build(); got != tt.wantSQL {
				t.Errorf("Expected %q, got %q", tt.wantSQL, got)
			}
		})
	}
}

func TestLimit_ZeroValue(t *testing.T) {
	var l Limit
	if !l.IsZero() {
		t.Error("Expected zero Limit to be unset")
	}
	if got := l.Build(); got != "" {
		t.Errorf("Expected empty SQL, got %q", got)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                  string
		total, page, perPage  int64
		wantPage, wantPages   int64
		wantOffset            int64
		wantHasNext, wantPrev bool
	}{
		{"empty set", 0, 1, 10, 1, 1, 0, false, false},
		{"middle page", 95, 5, 10, 5, 10, 40, true, true},
		{"past the end clamps", 30, 9, 10, 3, 3, 20, false, true},
		{"zero per page floors to one", 3, 2, 0, 2, 3, 1, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.page, tt.perPage)
			if p.Page != tt.wantPage || p.Pages != tt.wantPages {
				t.Errorf("Expected page %d of %d, got %d of %d", tt.wantPage, tt.wantPages, p.Page, p.Pages)
			}
			if p.Limit().Offset() != tt.wantOffset {
				t.Errorf("Expected offset %d, got %d", tt.wantOffset, p.Limit().Offset())
			}
			if p.HasNext() != tt.wantHasNext || p.HasPrev() != tt.wantPrev {
				t.Errorf("Expected next=%v prev=%v, got next=%v prev=%v", tt.wantHasNext, tt.wantPrev, p.HasNext(), p.HasPrev())
			}
		})
	}
}

func TestSort_Build(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want string
	}{
		{"empty", nil, ""},
		{"asc and desc", OrderBy(Asc("price"), Desc("created_at")), " ORDER BY `price` ASC, `created_at` DESC"},
		{"bare column", OrderBy(Bare("id")), " ORDER BY `id`"},
		{"dotted column", OrderBy(Desc("auth_roles.id")), " ORDER BY `auth_roles`.`id` DESC"},
		{"field ordering", OrderBy(Field("id", 3, 1, 2)), " ORDER BY FIELD(`id`, :field_id_0, :field_id_1, :field_id_2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sort.Build().SQL; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSort_FieldValuesAreBound(t *testing.T) {
	frag := OrderBy(Field("status", "N", "Y")).Build()
	if v, _ := frag.Params.Get("field_status_0"); v != "N" {
		t.Errorf("Expected field_status_0 = N, got %v", v)
	}
	if v, _ := frag.Params.Get("field_status_1"); v != "Y" {
		t.Errorf("Expected field_status_1 = Y, got %v", v)
	}
}

func TestDirection(t *testing.T) {
	for _, dir := range []string{"asc", "ASC", "Desc", " desc "} {
		if _, ok := Direction("id", dir); !ok {
			t.Errorf("Expected %q to be accepted", dir)
		}
	}
	for _, dir := range []string{"", "up", "ascending", "1; DROP"} {
		if _, ok := Direction("id", dir); ok {
			t.Errorf("Expected %q to be rejected", dir)
		}
	}
}

func TestColumns_Build(t *testing.T) {
	tests := []struct {
		name string
		cols Columns
		want string
	}{
		{"default wildcard", nil, "*"},
		{"single bare column", Cols("id"), "`id`"},
		{"several", Cols("id", "name", "phone"), "`id`, `name`, `phone`"},
		{"table wildcard and alias", Cols("table1.*").With(As("t2_id", "table2.id")), "`table1`.*, `table2`.`id` AS `t2_id`"},
		{"dotted alias is one identifier", Cols().With(As("u.name", "name")), "`name` AS `u.name`"},
		{"blank names skipped", Cols("", " "), "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cols.Build(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildJoins(t *testing.T) {
	tests := []struct {
		name  string
		joins []Join
		want  string
	}{
		{
			name:  "default is inner",
			joins: []Join{JoinOn(InnerJoin, "auth_roles", "auth_users.role_id", "auth_roles.id")},
			want:  "INNER JOIN `auth_roles` ON `auth_users`.`role_id` = `auth_roles`.`id`",
		},
		{
			name: "left join with two predicates",
			joins: []Join{
				JoinOn(LeftJoin, "auth_modules", "auth_modules.id", "auth_role_modules.module_id").
					And("auth_modules.parent_id", OpGe, "auth_role_modules.role_id"),
			},
			want: "LEFT JOIN `auth_modules` ON `auth_modules`.`id` = `auth_role_modules`.`module_id` AND `auth_modules`.`parent_id` >= `auth_role_modules`.`role_id`",
		},
		{
			name: "multiple tables in order",
			joins: []Join{
				JoinOn(RightJoin, "a", "a.id", "t.a_id"),
				JoinOn(LeftJoin, "b", "b.id", "t.b_id"),
			},
			want: "RIGHT JOIN `a` ON `a`.`id` = `t`.`a_id` LEFT JOIN `b` ON `b`.`id` = `t`.`b_id`",
		},
		{
			name:  "non comparison operator falls back to eq",
			joins: []Join{JoinOn(InnerJoin, "a", "a.id", "t.a_id").And("a.x", OpLike, "t.x")},
			want:  "INNER JOIN `a` ON `a`.`id` = `t`.`a_id` AND `a`.`x` = `t`.`x`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildJoins(tt.joins); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseJoinType(t *testing.T) {
	if ParseJoinType("LEFT") != LeftJoin || ParseJoinType("right") != RightJoin || ParseJoinType("") != InnerJoin {
		t.Error("ParseJoinType mismatch")
	}
}
