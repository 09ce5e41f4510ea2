package category

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"

	"github.com/simp-lee/shopadmin/internal/domain"
)

func TestCategoryRequest_Validation(t *testing.T) {
	if err := binding.Validator.ValidateStruct(&CategoryRequest{Name: "Skin care"}); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if err := binding.Validator.ValidateStruct(&CategoryRequest{Name: "S"}); err == nil {
		t.Error("short name accepted")
	}
}

func TestCategoryRequest_TopLevelOmitsParent(t *testing.T) {
	b, err := json.Marshal((&CategoryRequest{Name: "Skin care"}).Payload())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if _, ok := m["parentId"]; ok {
		t.Errorf("payload = %s", b)
	}
}

func TestDefinition_Search(t *testing.T) {
	def := Definition()
	c := domain.Category{ID: "c1", Name: "Serums", ParentID: "c0"}
	if def.IDOf(c) != "c1" || def.Values(c)["parentId"] != "c0" {
		t.Errorf("values = %v", def.Values(c))
	}
	if len(def.TextFields) != 1 || def.TextFields[0](c) != "Serums" {
		t.Error("categories are searched by name")
	}
}
