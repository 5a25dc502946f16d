// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import "errors"

// Errors is the closed taxonomy of grammar productions that can fail.
// Every production is total: it returns either a node handle or one of
// these sentinels (spec §7). The top-level entry point returns the first
// error encountered; nothing is retried or recovered locally.
var (
	ErrUnexpectedEOF = errors.New("demangle: unexpected end of input")

	ErrInvalidAnonymousNamespaceName   = errors.New("demangle: invalid anonymous namespace name")
	ErrInvalidArrayType                = errors.New("demangle: invalid array type")
	ErrInvalidBackRef                  = errors.New("demangle: invalid back-reference")
	ErrInvalidCallingConvention        = errors.New("demangle: invalid calling convention")
	ErrInvalidCharLiteral              = errors.New("demangle: invalid char literal")
	ErrInvalidClassType                = errors.New("demangle: invalid class type")
	ErrInvalidCustomType                = errors.New("demangle: invalid custom type")
	ErrInvalidDeclarator               = errors.New("demangle: invalid declarator")
	ErrInvalidEncodedSymbol            = errors.New("demangle: invalid encoded symbol")
	ErrInvalidFullyQualifiedSymbolName = errors.New("demangle: invalid fully qualified symbol name")
	ErrInvalidFunctionClass            = errors.New("demangle: invalid function class")
	ErrInvalidFunctionEncoding         = errors.New("demangle: invalid function encoding")
	ErrInvalidFunctionIdentifierCode   = errors.New("demangle: invalid function identifier code")
	ErrInvalidFunctionParameterList    = errors.New("demangle: invalid function parameter list")
	ErrInvalidFunctionType             = errors.New("demangle: invalid function type")
	ErrInvalidInitFiniStub             = errors.New("demangle: invalid init/fini stub")
	ErrInvalidIntrinsicFunctionCode    = errors.New("demangle: invalid intrinsic function code")
	ErrInvalidLocallyScopedNamePiece   = errors.New("demangle: invalid locally-scoped name piece")
	ErrInvalidLocalStaticGuard         = errors.New("demangle: invalid local static guard")
	ErrInvalidMd5Name                  = errors.New("demangle: invalid MD5 name")
	ErrInvalidMemberPointerType        = errors.New("demangle: invalid member pointer type")
	ErrInvalidNameScopeChain           = errors.New("demangle: invalid name scope chain")
	ErrInvalidNumber                   = errors.New("demangle: invalid number")
	ErrInvalidPointerCVQualifiers      = errors.New("demangle: invalid pointer cv qualifiers")
	ErrInvalidPointerType              = errors.New("demangle: invalid pointer type")
	ErrInvalidPrimitiveType            = errors.New("demangle: invalid primitive type")
	ErrInvalidQualifiers               = errors.New("demangle: invalid qualifiers")
	ErrInvalidRttiBaseClassDescriptor  = errors.New("demangle: invalid RTTI base-class-descriptor node")
	ErrInvalidSigned                   = errors.New("demangle: invalid signed")
	ErrInvalidSimpleString             = errors.New("demangle: invalid simple string")
	ErrInvalidSpecialIntrinsic         = errors.New("demangle: invalid special intrinsic")
	ErrInvalidSpecialTableSymbolNode   = errors.New("demangle: invalid special-table symbol node")
	ErrInvalidStringLiteral           = errors.New("demangle: invalid string literal")
	ErrInvalidTagUniqueName           = errors.New("demangle: invalid tag unique name")
	ErrInvalidTemplateInstantiationName = errors.New("demangle: invalid template instantiation name")
	ErrInvalidTemplateParameterList    = errors.New("demangle: invalid template parameter list")
	ErrInvalidThrowSpecification       = errors.New("demangle: invalid throw specification")
	ErrInvalidType                     = errors.New("demangle: invalid type")
	ErrInvalidTypeinfoName             = errors.New("demangle: invalid typeinfo name")
	ErrInvalidUnsigned                 = errors.New("demangle: invalid unsigned")
	ErrInvalidUntypedVariable          = errors.New("demangle: invalid untyped variable")
	ErrInvalidVariableStorageClass     = errors.New("demangle: invalid variable storage class")
	ErrInvalidVcallThunkNode           = errors.New("demangle: invalid vcall thunk node")
	ErrTooManyBackRefs                 = errors.New("demangle: too many backrefs")

	// ErrUnsupportedIntrinsic covers the two named non-goals that are
	// recognized but never decoded: typeof and udt-returning thunks.
	ErrUnsupportedIntrinsic = errors.New("demangle: unsupported special intrinsic (typeof/udt-returning)")

	// ErrWrite covers the output writer's own I/O channel (spec §7's
	// "an I/O error channel for the output writer"). The printer writes
	// into a strings.Builder, which never fails, and its functions return
	// no error, so nothing in the package currently returns ErrWrite.
	ErrWrite = errors.New("demangle: output write error")
)
