package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/haukened/staffdir/internal/staff/domain"
)

const statusSuccess = "success"

// envelope is the wrapper every backend response uses.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// employeeDTO is one employee as the backend encodes it.
type employeeDTO struct {
	ID           flexInt `json:"id" validate:"gt=0"`
	Name         string  `json:"employee_name" validate:"required"`
	Age          flexInt `json:"employee_age" validate:"gte=0"`
	Salary       flexInt `json:"employee_salary" validate:"gte=0"`
	ProfileImage string  `json:"profile_image"`
}

func (d employeeDTO) toDomain() domain.Employee {
	return domain.Employee{
		ID:           int(d.ID),
		Name:         strings.TrimSpace(d.Name),
		Age:          int(d.Age),
		Salary:       int(d.Salary),
		ProfileImage: d.ProfileImage,
	}
}

// salaryDTO is the data of an update response.
type salaryDTO struct {
	Salary *flexInt `json:"employee_salary"`
}

// flexInt decodes a JSON number or a decimal string; the backend has used both.
// null and "" decode to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			*f = 0
			return nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexInt(math.Round(v))
	return nil
}
