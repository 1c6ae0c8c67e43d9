// Package valuesource 提供 [interp.ValueSource] 的常用实现。
//
// # 来源一览
//
//   - [Map] / [Single] - 内存中的固定值
//   - [Properties] - Java 风格的 .properties 文件
//   - [Env] - 环境变量快照，可忽略大小写，可去掉 env. 前缀
//   - [Shell] - Shell 参数展开语法，如 ${HOST:-localhost}
//   - [Prefixed] - 去掉表达式前缀后交给被包装的来源
//   - [Object] - 在结构体 / map / JSON / YAML 树中按路径查找
//   - [SQL] - 通过 database/sql 查询
//   - [Feedbacking] - 总是无法回答，只记录诊断信息，放在来源链末尾
//
// 需要记录诊断信息的来源可以嵌入 [FeedbackLog]。
//
// # 示例
//
//	props, err := valuesource.LoadProperties("app.properties")
//	if err != nil {
//	    return err
//	}
//	in := interp.New(interp.WithValueSources(
//	    valuesource.Map{"name": "demo"},
//	    props,
//	    valuesource.NewEnv(valuesource.WithCaseInsensitive()),
//	    valuesource.NewFeedbacking(),
//	))
package valuesource
