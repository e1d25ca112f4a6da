// Package main 启动应用程序
package main

import "github.com/yeisme/projecthub/pkg/cmd"

//	@title			ProjectHub API
//	@version		1.0
//	@description	ProjectHub 提供项目文件上传、分享链接签发与基于令牌/PIN 的公共访问。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

//	@securityDefinitions.apikey	AdminKey
//	@in							header
//	@name						X-API-Key

//	@securityDefinitions.apikey	PublicKey
//	@in							header
//	@name						X-API-Key

//	@securityDefinitions.apikey	SharePIN
//	@in							header
//	@name						Authorization

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
