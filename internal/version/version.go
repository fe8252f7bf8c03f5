// 包 version：构建信息，发布时通过 -ldflags "-X realm-map/internal/version.Commit=<sha>" 注入
package version

var Commit = "dev"
