package irc

import "strings"

// A MessageType is the semantic tag for an inbound command token, either a
// textual command like PRIVMSG or a three-digit numeric reply. Every line
// the server can send classifies to exactly one of these; tokens nobody has
// heard of classify to TypeUnknown instead of failing.
type MessageType uint16

// Textual commands.
const (
	TypeUnknown MessageType = iota
	TypePing
	TypePong
	TypeError
	TypeAuthenticate
	TypeCap
	TypePrivmsg
	TypeNotice
	TypeJoin
	TypePart
	TypeQuit
	TypeTopic
	TypeKick
	TypeMode
	TypeNick
	TypeSquit
	TypeAway
	TypeInvite
	TypeChghost
	TypeAccount
)

// Numeric replies, RFC 1459/2812 plus the IRCv3 SASL block.
const (
	RplWelcome          MessageType = iota + 100 // 001
	RplYourHost                                  // 002
	RplCreated                                   // 003
	RplMyInfo                                    // 004
	RplISupport                                  // 005
	RplTraceLink                                 // 200
	RplTraceConnecting                           // 201
	RplTraceHandshake                            // 202
	RplTraceUnknown                              // 203
	RplTraceOperator                             // 204
	RplTraceUser                                 // 205
	RplTraceServer                               // 206
	RplTraceService                              // 207
	RplTraceNewType                              // 208
	RplTraceClass                                // 209
	RplTraceReconnect                            // 210
	RplStatsLinkInfo                             // 211
	RplStatsCommands                             // 212
	RplEndOfStats                                // 219
	RplUmodeIs                                   // 221
	RplServList                                  // 234
	RplServListEnd                               // 235
	RplStatsUptime                               // 242
	RplStatsOLine                                // 243
	RplLuserClient                               // 251
	RplLuserOp                                   // 252
	RplLuserUnknown                              // 253
	RplLuserChannels                             // 254
	RplLuserMe                                   // 255
	RplAdminMe                                   // 256
	RplAdminLoc1                                 // 257
	RplAdminLoc2                                 // 258
	RplAdminEmail                                // 259
	RplTraceLog                                  // 261
	RplTraceEnd                                  // 262
	RplTryAgain                                  // 263
	RplAway                                      // 301
	RplUserHost                                  // 302
	RplIsOn                                      // 303
	RplUnaway                                    // 305
	RplNowAway                                   // 306
	RplWhoisUser                                 // 311
	RplWhoisServer                               // 312
	RplWhoisOperator                             // 313
	RplWhowasUser                                // 314
	RplEndOfWho                                  // 315
	RplWhoisIdle                                 // 317
	RplEndOfWhois                                // 318
	RplWhoisChannels                             // 319
	RplList                                      // 322
	RplListEnd                                   // 323
	RplChannelModeIs                             // 324
	RplUniqOpIs                                  // 325
	RplCreationTime                              // 329
	RplWhoisAccount                              // 330
	RplNoTopic                                   // 331
	RplTopic                                     // 332
	RplTopicWhoTime                              // 333
	RplInviting                                  // 341
	RplInviteList                                // 346
	RplEndOfInviteList                           // 347
	RplExceptList                                // 348
	RplEndOfExceptList                           // 349
	RplVersion                                   // 351
	RplWhoReply                                  // 352
	RplNamReply                                  // 353
	RplLinks                                     // 364
	RplEndOfLinks                                // 365
	RplEndOfNames                                // 366
	RplBanList                                   // 367
	RplEndOfBanList                              // 368
	RplEndOfWhowas                               // 369
	RplInfo                                      // 371
	RplMOTD                                      // 372
	RplEndOfInfo                                 // 374
	RplMOTDStart                                 // 375
	RplEndOfMOTD                                 // 376
	RplYoureOper                                 // 381
	RplRehashing                                 // 382
	RplYoureService                              // 383
	RplTime                                      // 391
	RplUsersStart                                // 392
	RplUsers                                     // 393
	RplEndOfUsers                                // 394
	RplNoUsers                                   // 395
	ErrNoSuchNick                                // 401
	ErrNoSuchServer                              // 402
	ErrNoSuchChannel                             // 403
	ErrCannotSendToChan                          // 404
	ErrTooManyChannels                           // 405
	ErrWasNoSuchNick                             // 406
	ErrTooManyTargets                            // 407
	ErrNoSuchService                             // 408
	ErrNoOrigin                                  // 409
	ErrNoRecipient                               // 411
	ErrNoTextToSend                              // 412
	ErrNoTopLevel                                // 413
	ErrWildTopLevel                              // 415
	ErrUnknownCommand                            // 421
	ErrNoMOTD                                    // 422
	ErrNoAdminInfo                               // 423
	ErrFileError                                 // 424
	ErrNoNicknameGiven                           // 431
	ErrErroneusNickname                          // 432
	ErrNicknameInUse                             // 433
	ErrNickCollision                             // 436
	ErrUnavailResource                           // 437
	ErrUserNotInChannel                          // 441
	ErrNotOnChannel                              // 442
	ErrUserOnChannel                             // 443
	ErrNoLogin                                   // 444
	ErrSummonDisabled                            // 445
	ErrUsersDisabled                             // 446
	ErrNotRegistered                             // 451
	ErrNeedMoreParams                            // 461
	ErrAlreadyRegistered                         // 462
	ErrNoPermForHost                             // 463
	ErrPasswdMismatch                            // 464
	ErrYoureBannedCreep                          // 465
	ErrYouWillBeBanned                           // 466
	ErrKeySet                                    // 467
	ErrChannelIsFull                             // 471
	ErrUnknownMode                               // 472
	ErrInviteOnlyChan                            // 473
	ErrBannedFromChan                            // 474
	ErrBadChannelKey                             // 475
	ErrBadChanMask                               // 476
	ErrNoChanModes                               // 477
	ErrBanListFull                               // 478
	ErrNoPrivileges                              // 481
	ErrChanOPrivsNeeded                          // 482
	ErrCantKillServer                            // 483
	ErrRestricted                                // 484
	ErrUniqOpPrivsNeeded                         // 485
	ErrNoOperHost                                // 491
	ErrUmodeUnknownFlag                          // 501
	ErrUsersDontMatch                            // 502
	RplWhoisSecure                               // 671
	RplLoggedIn                                  // 900
	RplLoggedOut                                 // 901
	ErrNickLocked                                // 902
	RplSASLSuccess                               // 903
	ErrSASLFail                                  // 904
	ErrSASLTooLong                               // 905
	ErrSASLAborted                               // 906
	ErrSASLAlready                               // 907
	RplSASLMechs                                 // 908
)

var commandTypes = map[string]MessageType{
	"PING":         TypePing,
	"PONG":         TypePong,
	"ERROR":        TypeError,
	"AUTHENTICATE": TypeAuthenticate,
	"CAP":          TypeCap,
	"PRIVMSG":      TypePrivmsg,
	"NOTICE":       TypeNotice,
	"JOIN":         TypeJoin,
	"PART":         TypePart,
	"QUIT":         TypeQuit,
	"TOPIC":        TypeTopic,
	"KICK":         TypeKick,
	"MODE":         TypeMode,
	"NICK":         TypeNick,
	"SQUIT":        TypeSquit,
	"AWAY":         TypeAway,
	"INVITE":       TypeInvite,
	"CHGHOST":      TypeChghost,
	"ACCOUNT":      TypeAccount,
}

var numericTypes = map[string]MessageType{
	"001": RplWelcome,
	"002": RplYourHost,
	"003": RplCreated,
	"004": RplMyInfo,
	"005": RplISupport,
	"200": RplTraceLink,
	"201": RplTraceConnecting,
	"202": RplTraceHandshake,
	"203": RplTraceUnknown,
	"204": RplTraceOperator,
	"205": RplTraceUser,
	"206": RplTraceServer,
	"207": RplTraceService,
	"208": RplTraceNewType,
	"209": RplTraceClass,
	"210": RplTraceReconnect,
	"211": RplStatsLinkInfo,
	"212": RplStatsCommands,
	"219": RplEndOfStats,
	"221": RplUmodeIs,
	"234": RplServList,
	"235": RplServListEnd,
	"242": RplStatsUptime,
	"243": RplStatsOLine,
	"251": RplLuserClient,
	"252": RplLuserOp,
	"253": RplLuserUnknown,
	"254": RplLuserChannels,
	"255": RplLuserMe,
	"256": RplAdminMe,
	"257": RplAdminLoc1,
	"258": RplAdminLoc2,
	"259": RplAdminEmail,
	"261": RplTraceLog,
	"262": RplTraceEnd,
	"263": RplTryAgain,
	"301": RplAway,
	"302": RplUserHost,
	"303": RplIsOn,
	"305": RplUnaway,
	"306": RplNowAway,
	"311": RplWhoisUser,
	"312": RplWhoisServer,
	"313": RplWhoisOperator,
	"314": RplWhowasUser,
	"315": RplEndOfWho,
	"317": RplWhoisIdle,
	"318": RplEndOfWhois,
	"319": RplWhoisChannels,
	"322": RplList,
	"323": RplListEnd,
	"324": RplChannelModeIs,
	"325": RplUniqOpIs,
	"329": RplCreationTime,
	"330": RplWhoisAccount,
	"331": RplNoTopic,
	"332": RplTopic,
	"333": RplTopicWhoTime,
	"341": RplInviting,
	"346": RplInviteList,
	"347": RplEndOfInviteList,
	"348": RplExceptList,
	"349": RplEndOfExceptList,
	"351": RplVersion,
	"352": RplWhoReply,
	"353": RplNamReply,
	"364": RplLinks,
	"365": RplEndOfLinks,
	"366": RplEndOfNames,
	"367": RplBanList,
	"368": RplEndOfBanList,
	"369": RplEndOfWhowas,
	"371": RplInfo,
	"372": RplMOTD,
	"374": RplEndOfInfo,
	"375": RplMOTDStart,
	"376": RplEndOfMOTD,
	"381": RplYoureOper,
	"382": RplRehashing,
	"383": RplYoureService,
	"391": RplTime,
	"392": RplUsersStart,
	"393": RplUsers,
	"394": RplEndOfUsers,
	"395": RplNoUsers,
	"401": ErrNoSuchNick,
	"402": ErrNoSuchServer,
	"403": ErrNoSuchChannel,
	"404": ErrCannotSendToChan,
	"405": ErrTooManyChannels,
	"406": ErrWasNoSuchNick,
	"407": ErrTooManyTargets,
	"408": ErrNoSuchService,
	"409": ErrNoOrigin,
	"411": ErrNoRecipient,
	"412": ErrNoTextToSend,
	"413": ErrNoTopLevel,
	"415": ErrWildTopLevel,
	"421": ErrUnknownCommand,
	"422": ErrNoMOTD,
	"423": ErrNoAdminInfo,
	"424": ErrFileError,
	"431": ErrNoNicknameGiven,
	"432": ErrErroneusNickname,
	"433": ErrNicknameInUse,
	"436": ErrNickCollision,
	"437": ErrUnavailResource,
	"441": ErrUserNotInChannel,
	"442": ErrNotOnChannel,
	"443": ErrUserOnChannel,
	"444": ErrNoLogin,
	"445": ErrSummonDisabled,
	"446": ErrUsersDisabled,
	"451": ErrNotRegistered,
	"461": ErrNeedMoreParams,
	"462": ErrAlreadyRegistered,
	"463": ErrNoPermForHost,
	"464": ErrPasswdMismatch,
	"465": ErrYoureBannedCreep,
	"466": ErrYouWillBeBanned,
	"467": ErrKeySet,
	"471": ErrChannelIsFull,
	"472": ErrUnknownMode,
	"473": ErrInviteOnlyChan,
	"474": ErrBannedFromChan,
	"475": ErrBadChannelKey,
	"476": ErrBadChanMask,
	"477": ErrNoChanModes,
	"478": ErrBanListFull,
	"481": ErrNoPrivileges,
	"482": ErrChanOPrivsNeeded,
	"483": ErrCantKillServer,
	"484": ErrRestricted,
	"485": ErrUniqOpPrivsNeeded,
	"491": ErrNoOperHost,
	"501": ErrUmodeUnknownFlag,
	"502": ErrUsersDontMatch,
	"671": RplWhoisSecure,
	"900": RplLoggedIn,
	"901": RplLoggedOut,
	"902": ErrNickLocked,
	"903": RplSASLSuccess,
	"904": ErrSASLFail,
	"905": ErrSASLTooLong,
	"906": ErrSASLAborted,
	"907": ErrSASLAlready,
	"908": RplSASLMechs,
}

// LookupMessageType classifies a raw command token. Textual commands are
// matched case-insensitively, numerics map straight to their reply constant.
func LookupMessageType(token string) MessageType {
	if len(token) == 3 && token[0] >= '0' && token[0] <= '9' {
		if t, ok := numericTypes[token]; ok {
			return t
		}

		return TypeUnknown
	}

	if t, ok := commandTypes[strings.ToUpper(token)]; ok {
		return t
	}

	return TypeUnknown
}

// IsNumeric returns true for message types representing three-digit replies.
func (t MessageType) IsNumeric() bool {
	return t >= RplWelcome
}

// IsError returns true for numeric replies in the 400-502 error range plus
// the SASL failure codes.
func (t MessageType) IsError() bool {
	switch {
	case t >= ErrNoSuchNick && t <= ErrUsersDontMatch:
		return true
	case t == ErrNickLocked, t == ErrSASLFail, t == ErrSASLTooLong, t == ErrSASLAborted, t == ErrSASLAlready:
		return true
	}

	return false
}

// A CapType is the classified sub-command of a CAP line.
type CapType uint8

const (
	CapUnknown CapType = iota
	CapLS
	CapACK
	CapNAK
	CapClear
	CapNew
	CapDel
)

var capTypes = map[string]CapType{
	"LS":    CapLS,
	"ACK":   CapACK,
	"NAK":   CapNAK,
	"CLEAR": CapClear,
	"NEW":   CapNew,
	"DEL":   CapDel,
}

// LookupCapType classifies a CAP sub-command token, case-insensitively.
func LookupCapType(token string) CapType {
	if t, ok := capTypes[strings.ToUpper(token)]; ok {
		return t
	}

	return CapUnknown
}
