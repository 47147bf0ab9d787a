package codegen

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet 生成短码使用的字符集，只包含字母和数字，可直接用于 URL
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// DefaultLength 默认短码长度
	DefaultLength = 6
	// MinLength MaxLength 与自定义短码的长度限制一致
	MinLength = 3
	MaxLength = 20
)

// Generator 随机短码生成器，不保证唯一，由调用方检测冲突后重试
type Generator struct {
	length int
}

// NewGenerator length <= 0 时使用 DefaultLength
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate 生成一个新短码
func (g *Generator) Generate() (string, error) {
	return gonanoid.Generate(Alphabet, g.length)
}

// Length 短码长度
func (g *Generator) Length() int {
	return g.length
}
