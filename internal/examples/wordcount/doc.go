// Package wordcount 是一个最小的单词计数拓扑，用于演示和验证多语言协议：
// sentence-spout 产生句子，split-bolt 拆分单词，count-bolt 在 SQLite 中累计计数。
package wordcount
