// Package interp 提供字符串插值引擎。
//
// 引擎在输入中查找带分隔符的表达式（如 ${name}），依次询问值来源，
// 对得到的值递归插值，经过后处理器后替换回原文。
// 它只处理裸 key，不提供条件、循环或表达式运算，适合配置文件等模板展开场景。
//
// # 三种定位方式
//
// 解析语义（转义、循环检测、缓存、后处理）完全一致，仅定位表达式的方式不同：
//
//  1. 单分隔符 - 默认 ${...}，或 [WithDelimiter] 指定
//  2. 多分隔符 - [WithDelimiterSpecs] / [Interpolator.AddDelimiterSpec]，最多扫描 [MaxPasses] 轮
//  3. 正则 - [WithPattern] / [WithPrefixPattern]，正则由 [PatternCache] 缓存
//
// # 语义说明
//
//  1. 没有结束标记的表达式原样保留，之后的内容也不再处理
//  2. ${.foo} 会去掉开头的一个点，按 foo 查找
//  3. 转义串紧贴起始标记时，表达式原样输出并去掉一个转义串
//  4. 无法解析的表达式原样保留，同一次调用内不再重复尝试
//  5. 值的字符串形式包含表达式本身且没有其他来源回答时，视为循环
//  6. 循环引用返回 [*CycleError]，可用 errors.Is(err, ErrCycle) 判断
//
// # 快速开始
//
//	in := interp.New(
//	    interp.WithValueSources(valuesource.Map{"test.label": "test value"}),
//	)
//	out, err := in.Interpolate("This is a ${test.label}.")
//	// out == "This is a test value."
//
// 多分隔符：
//
//	in := interp.New(
//	    interp.WithDelimiterSpecs("@"),
//	    interp.WithValueSources(valuesource.Map{"otherName": "@name@", "name": "User"}),
//	)
//	out, _ := in.Interpolate("${otherName}") // "User"
//
// # 并发
//
// [Interpolator] 持有可变的答案缓存，不能被并发调用。
// [Fixed] 的配置不可变，每个 goroutine 传入自己的 [State] 即可共享。
package interp
