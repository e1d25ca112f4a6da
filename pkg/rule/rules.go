package rule

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// registerBuiltins 注册业务规则.
//
//	share_pin      分享 PIN，4 到 12 位数字
//	client_status  客户审批结果，approved 或 rejected
//	uploaded_by    上传方，Admin 或 Client
func registerBuiltins(v *validator.Validate) {
	_ = v.RegisterValidation("share_pin", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()

		return len(s) >= 4 && len(s) <= 12 && digitsPattern.MatchString(s)
	})

	v.RegisterAlias("client_status", "oneof=approved rejected")
	v.RegisterAlias("uploaded_by", "oneof=Admin Client")
}
