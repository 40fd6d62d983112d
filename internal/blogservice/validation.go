package blogservice

import (
	"github.com/sushihentaime/blogapi/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 200), "title", "must not be more than 200 characters long")
}

func validateTags(v *common.Validator, tags []string) {
	v.Check(len(tags) <= 20, "tags", "must not contain more than 20 tags")
	for _, tag := range tags {
		if tag == "" {
			v.AddError("tags", "must not contain empty tags")
			return
		}
	}
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
